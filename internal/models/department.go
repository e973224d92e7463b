package models

import (
	"time"

	"github.com/lib/pq"
)

// Department is a campus location: academic department, library, canteen, hostel or admin block.
type Department struct {
	ID            string         `db:"id" json:"id"`
	Code          string         `db:"code" json:"code"`
	Name          string         `db:"name" json:"name"`
	Description   string         `db:"description" json:"description,omitempty"`
	Latitude      float64        `db:"latitude" json:"latitude"`
	Longitude     float64        `db:"longitude" json:"longitude"`
	Building      string         `db:"building" json:"building,omitempty"`
	Floor         *int           `db:"floor" json:"floor,omitempty"`
	Rooms         pq.StringArray `db:"rooms" json:"rooms"`
	Phone         string         `db:"phone" json:"phone,omitempty"`
	Email         string         `db:"email" json:"email,omitempty"`
	HODName       string         `db:"hod_name" json:"hodName,omitempty"`
	HODEmail      string         `db:"hod_email" json:"hodEmail,omitempty"`
	HODPhone      string         `db:"hod_phone" json:"hodPhone,omitempty"`
	VisitingHours string         `db:"visiting_hours" json:"visitingHours,omitempty"`
	MapLink       string         `db:"map_link" json:"mapLink,omitempty"`
	Photo360Link  string         `db:"photo_360_link" json:"photo360Link,omitempty"`
	SearchCount   int            `db:"search_count" json:"searchCount"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// DepartmentColumns is the select list shared by department queries.
const DepartmentColumns = `id, code, name, description, latitude, longitude, building, floor, rooms, phone, email, hod_name, hod_email, hod_phone, visiting_hours, map_link, photo_360_link, search_count, created_at, updated_at`

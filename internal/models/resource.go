package models

import (
	"time"

	"github.com/lib/pq"
)

// ResourceStatus is the moderation state of a resource.
type ResourceStatus string

const (
	ResourcePending  ResourceStatus = "pending"
	ResourceApproved ResourceStatus = "approved"
	ResourceRejected ResourceStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ResourceStatus) Valid() bool {
	switch s {
	case ResourcePending, ResourceApproved, ResourceRejected:
		return true
	}
	return false
}

// Resource is a study-material reference.
type Resource struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description,omitempty"`
	Department  string         `db:"department" json:"department"`
	FileURL     string         `db:"file_url" json:"fileUrl"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	FileType    string         `db:"file_type" json:"fileType"`
	Category    string         `db:"category" json:"category"`
	Semester    *int           `db:"semester" json:"semester,omitempty"`
	Subject     string         `db:"subject" json:"subject,omitempty"`
	UploadedBy  *string        `db:"uploaded_by" json:"uploadedBy,omitempty"`
	Status      ResourceStatus `db:"status" json:"status"`
	IsVerified  bool           `db:"is_verified" json:"isVerified"`
	Views       int            `db:"views" json:"views"`
	Downloads   int            `db:"downloads" json:"downloads"`
	Rating      float64        `db:"rating" json:"rating"`
	RatingCount int            `db:"rating_count" json:"ratingCount"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// ModerationItem is a resource joined with its uploader.
type ModerationItem struct {
	Resource
	UploaderName  *string `db:"uploader_name" json:"uploaderName,omitempty"`
	UploaderEmail *string `db:"uploader_email" json:"uploaderEmail,omitempty"`
}

// ResourceFilter narrows public resource queries. Status is always applied.
// Department matches as a substring unless ExactDept or DeptWord is set;
// DeptWord matches whole words only, so "it" finds "IT" but not "Architecture".
type ResourceFilter struct {
	Status     ResourceStatus
	Department string
	Keyword    string
	ExactDept  bool
	DeptWord   bool
	Limit      int
}

// ResourceColumns is the select list shared by resource queries.
const ResourceColumns = `id, title, description, department, file_url, tags, file_type, category, semester, subject, uploaded_by, status, is_verified, views, downloads, rating, rating_count, created_at, updated_at`

package dto

// CreateDepartmentRequest is the admin payload for a new campus location.
type CreateDepartmentRequest struct {
	Name          string   `json:"name" validate:"required,min=3,max=100"`
	Code          string   `json:"code" validate:"required,min=2,max=10,deptcode"`
	Description   string   `json:"description" validate:"max=500"`
	Latitude      *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Building      string   `json:"building" validate:"max=100"`
	Floor         *int     `json:"floor" validate:"omitempty,gte=0,lte=10"`
	Rooms         []string `json:"rooms" validate:"max=50,dive,max=50"`
	Phone         string   `json:"phone" validate:"max=32"`
	Email         string   `json:"email" validate:"omitempty,email"`
	HODName       string   `json:"hodName" validate:"max=100"`
	HODEmail      string   `json:"hodEmail" validate:"omitempty,email"`
	HODPhone      string   `json:"hodPhone" validate:"max=32"`
	VisitingHours string   `json:"visitingHours" validate:"max=100"`
	MapLink       string   `json:"mapLink" validate:"omitempty,http_url"`
	Photo360Link  string   `json:"photo360Link" validate:"omitempty,http_url"`
}

// UpdateDepartmentRequest carries a partial update; nil fields are left untouched.
type UpdateDepartmentRequest struct {
	Name          *string   `json:"name" validate:"omitempty,min=3,max=100"`
	Code          *string   `json:"code" validate:"omitempty,min=2,max=10,deptcode"`
	Description   *string   `json:"description" validate:"omitempty,max=500"`
	Latitude      *float64  `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64  `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Building      *string   `json:"building" validate:"omitempty,max=100"`
	Floor         *int      `json:"floor" validate:"omitempty,gte=0,lte=10"`
	Rooms         *[]string `json:"rooms" validate:"omitempty,max=50,dive,max=50"`
	Phone         *string   `json:"phone" validate:"omitempty,max=32"`
	Email         *string   `json:"email" validate:"omitempty,email"`
	HODName       *string   `json:"hodName" validate:"omitempty,max=100"`
	HODEmail      *string   `json:"hodEmail" validate:"omitempty,email"`
	HODPhone      *string   `json:"hodPhone" validate:"omitempty,max=32"`
	VisitingHours *string   `json:"visitingHours" validate:"omitempty,max=100"`
	MapLink       *string   `json:"mapLink" validate:"omitempty,http_url"`
	Photo360Link  *string   `json:"photo360Link" validate:"omitempty,http_url"`
}

// Empty reports whether the update carries no fields at all.
func (r UpdateDepartmentRequest) Empty() bool {
	return r.Name == nil && r.Code == nil && r.Description == nil && r.Latitude == nil &&
		r.Longitude == nil && r.Building == nil && r.Floor == nil && r.Rooms == nil &&
		r.Phone == nil && r.Email == nil && r.HODName == nil && r.HODEmail == nil &&
		r.HODPhone == nil && r.VisitingHours == nil && r.MapLink == nil && r.Photo360Link == nil
}

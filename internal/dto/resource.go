package dto

// CreateResourceRequest is submitted by a logged-in uploader. Status is never read from the payload.
type CreateResourceRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"max=1000"`
	Department  string   `json:"department" validate:"required,min=2,max=100"`
	FileURL     string   `json:"fileUrl" validate:"required,http_url"`
	Tags        []string `json:"tags" validate:"max=10,dive,max=50"`
	FileType    string   `json:"fileType" validate:"omitempty,oneof=pdf doc ppt image video other"`
	Category    string   `json:"category" validate:"omitempty,oneof=notes assignments previous-papers lab-manual syllabus other"`
	Semester    *int     `json:"semester" validate:"omitempty,min=1,max=8"`
	Subject     string   `json:"subject" validate:"max=150"`
}

// ModerationQuery filters the admin moderation queue.
type ModerationQuery struct {
	Status string `form:"status"`
	Format string `form:"format"`
}

package models

import "time"

// AuditAction constants represent admin actions to be logged.
const (
	AuditActionDepartmentCreate = "DEPARTMENT_CREATE"
	AuditActionDepartmentUpdate = "DEPARTMENT_UPDATE"
	AuditActionDepartmentDelete = "DEPARTMENT_DELETE"
	AuditActionResourceApprove  = "RESOURCE_APPROVE"
	AuditActionResourceReject   = "RESOURCE_REJECT"
	AuditActionResourceDelete   = "RESOURCE_DELETE"
	AuditActionVoiceCleanup     = "VOICE_CLEANUP"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionSignUp       = "SIGN_UP"
	AuditActionLogin        = "LOGIN"
	AuditActionLogout       = "LOGOUT"
	AuditActionUserUpdate   = "USER_UPDATE"
	AuditActionUserDelete   = "USER_DELETE"
	AuditActionAssign       = "COMPLAINT_ASSIGN"
	AuditActionStatusUpdate = "COMPLAINT_STATUS_UPDATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" bson:"_id" json:"id"`
	UserID     *string   `db:"user_id" bson:"userId,omitempty" json:"user_id,omitempty"`
	Action     string    `db:"action" bson:"action" json:"action"`
	Resource   string    `db:"resource" bson:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" bson:"resourceId,omitempty" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" bson:"oldValues,omitempty" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" bson:"newValues,omitempty" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" bson:"ipAddress" json:"ip_address"`
	UserAgent  string    `db:"user_agent" bson:"userAgent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" bson:"createdAt" json:"created_at"`
}

package domain

import "time"

// Audit actions recorded as side effects of admin operations.
const (
	AuditEnableUser        = "ENABLE_USER"
	AuditDisableUser       = "DISABLE_USER"
	AuditChangeRole        = "CHANGE_ROLE"
	AuditAssignClinician   = "ASSIGN_CLINICIAN"
	AuditUnassignClinician = "UNASSIGN_CLINICIAN"
)

// AuditLogEntry is an append-only record of an admin action. The Admin*/
// Target* name fields are presentation annotations filled in on read.
type AuditLogEntry struct {
	ID           string // UUID
	Action       string
	AdminID      string
	TargetUserID string
	CreatedAt    time.Time

	AdminName   string
	AdminEmail  string
	TargetName  string
	TargetEmail string
}

// AuditLogRepository defines data access for audit log entries
type AuditLogRepository interface {
	Create(entry *AuditLogEntry) error
	ListRecent(limit int) ([]*AuditLogEntry, error)
	ListByTarget(userID string) ([]*AuditLogEntry, error)
	ListByAdmin(userID string) ([]*AuditLogEntry, error)
}

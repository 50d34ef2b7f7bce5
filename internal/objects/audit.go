package objects

import "time"

type AuditAction string

const (
	AuditActionCreate      AuditAction = "CREATE"
	AuditActionUpdate      AuditAction = "UPDATE"
	AuditActionBatchUpdate AuditAction = "BATCH_UPDATE"
	AuditActionDelete      AuditAction = "DELETE"
)

// AuditEntry is an immutable record of one successful mutation.
type AuditEntry struct {
	ID         int64       `json:"id"`
	ActorEmail string      `json:"userEmail"`
	Action     AuditAction `json:"action"`
	Details    string      `json:"details"`
	CreatedAt  time.Time   `json:"createdAt"`
}

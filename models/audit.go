package models

import "time"

type AuditAction string

const (
	AuditCreated       AuditAction = "created"
	AuditConfirmed     AuditAction = "confirmed"
	AuditDelivered     AuditAction = "delivered"
	AuditReturned      AuditAction = "returned"
	AuditCompleted     AuditAction = "completed"
	AuditAutoCompleted AuditAction = "auto_completed"
	AuditCanceled      AuditAction = "canceled"
	AuditArchived      AuditAction = "archived"
	AuditRestored      AuditAction = "restored"
	AuditNote          AuditAction = "note"
	AuditPayment       AuditAction = "payment"
)

// SystemActor is recorded as the author of actions taken by background jobs.
const SystemActor = "system"

// AuditEntry is immutable once appended.
type AuditEntry struct {
	Action  AuditAction `bson:"action" json:"action"`
	By      string      `bson:"by" json:"by"`
	Details string      `bson:"details,omitempty" json:"details,omitempty"`
	At      time.Time   `bson:"at" json:"at"`
}

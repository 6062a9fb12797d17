package models

import "time"

// AuditLog is an append-only record of a mutating operation against roles,
// permissions or their associations. Rows are created exactly once by the
// component performing the mutation and never updated or deleted.
type AuditLog struct {
	// ID is the unique identifier for the audit entry.
	ID uint64 `gorm:"primaryKey"`
	// UserID references the acting user. The entry must survive user
	// deletion, so the reference is relaxed to SET NULL.
	UserID *uint64 `gorm:"column:user_id;index"`
	// User is the acting user (loaded via foreign key).
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	// Action names the mutation, e.g. "CREATE_ROLE" or "ASSIGN_USER_ROLES".
	Action string `gorm:"size:100;not null"`
	// EntityType is the kind of entity mutated, e.g. "role" or "user".
	EntityType string `gorm:"size:100;not null;index:idx_audit_entity"`
	// EntityID identifies the mutated entity within its type.
	EntityID string `gorm:"size:100;not null;index:idx_audit_entity"`
	// Description provides a human-readable summary of the mutation.
	Description string `gorm:"size:255"`
	// Changes holds a JSON serialized diff of the mutation, if any.
	Changes string
	// IPAddress is the remote address of the request that caused the mutation.
	IPAddress string `gorm:"size:64"`
	// UserAgent is the user agent of the request that caused the mutation.
	UserAgent string `gorm:"size:255"`
	// CreatedAt is the timestamp when the entry was recorded (managed by GORM).
	CreatedAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for the AuditLog model.
// This overrides GORM's default pluralized table naming.
func (AuditLog) TableName() string {
	return "audit_logs"
}

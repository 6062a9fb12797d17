package models

import "time"

// NameSeparator splits a permission name into its category and action
// segments, e.g. "role:update".
const NameSeparator = ":"

// Permission represents a specific permission in the authorization system.
// Permissions define granular access rights as a (category, action) pair.
// They are assigned to roles, which are then assigned to users.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique permission identifier in category:action format (e.g., "role:update").
	Name string `gorm:"unique;size:100;not null"`
	// Category is the resource group this permission applies to (e.g., "role", "content").
	// Stored denormalized from the name prefix for fast grouping; the write
	// path keeps the two consistent.
	Category string `gorm:"size:100;not null"`
	// Action is the action allowed within the category (e.g., "create", "read", "update", "delete").
	Action string `gorm:"size:50;not null"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}

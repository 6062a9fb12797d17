package models

import "time"

// UserRole represents the many-to-many relationship between users and roles.
// A user may hold several roles and a role may be held by several users.
// A user with zero roles simply has the empty capability set.
type UserRole struct {
	// UserID is the ID of the user in this assignment.
	UserID uint64 `gorm:"primaryKey;column:user_id"`
	// RoleID is the ID of the role in this assignment.
	RoleID uint `gorm:"primaryKey;column:role_id"`
	// User is the associated user (loaded via foreign key).
	// When a user is deleted, all their role assignments are automatically removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Role is the associated role (loaded via foreign key).
	// When a role is deleted, all assignments of that role are automatically removed (CASCADE).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the role was assigned (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the UserRole model.
// This overrides GORM's default pluralized table naming.
func (UserRole) TableName() string {
	return "user_roles"
}

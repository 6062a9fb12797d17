// Package assignment manages the two many-to-many association edges:
// role-to-permission and user-to-role. Both assignment operations are full
// replace: the existing edge set is deleted and the new complete set
// inserted inside one transaction, so a concurrent capability resolution
// never observes the half-done state.
package assignment

import (
	"errors"

	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/db/models"
)

var (
	// ErrRoleNotFound is returned when a referenced role does not exist.
	ErrRoleNotFound = errors.New("role not found")
	// ErrPermissionNotFound is returned when a referenced permission does not exist.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ReplaceRolePermissions replaces the role's complete permission set.
// Repeating the call with the same set leaves the edges identical: no
// duplicates, no stale rows.
func ReplaceRolePermissions(db *gorm.DB, roleID uint, permissionIDs []uint) error {
	if db == nil {
		return ErrDBNil
	}

	var count int64
	if err := db.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRoleNotFound
	}

	permissionIDs = dedupe(permissionIDs)

	if len(permissionIDs) > 0 {
		if err := db.Model(&models.Permission{}).Where("id IN ?", permissionIDs).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(permissionIDs)) {
			return ErrPermissionNotFound
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		for _, pid := range permissionIDs {
			if err := tx.Create(&models.RolePermission{
				RoleID:       roleID,
				PermissionID: pid,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// ReplaceUserRoles replaces the user's complete role set under the same
// full-replace, single-transaction contract as ReplaceRolePermissions.
func ReplaceUserRoles(db *gorm.DB, userID uint64, roleIDs []uint) error {
	if db == nil {
		return ErrDBNil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}

	roleIDs = dedupe(roleIDs)

	if len(roleIDs) > 0 {
		if err := db.Model(&models.Role{}).Where("id IN ?", roleIDs).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(roleIDs)) {
			return ErrRoleNotFound
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		for _, rid := range roleIDs {
			if err := tx.Create(&models.UserRole{
				UserID: userID,
				RoleID: rid,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// AddUserRole adds a single role to the user without touching the rest of
// the set. Used by the seed path.
func AddUserRole(db *gorm.DB, userID uint64, roleID uint) error {
	if db == nil {
		return ErrDBNil
	}

	var count int64
	if err := db.Model(&models.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Create(&models.UserRole{UserID: userID, RoleID: roleID}).Error
}

// GetUserRoles retrieves all roles held by the user.
func GetUserRoles(db *gorm.DB, userID uint64) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	result := db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

func dedupe[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))

	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

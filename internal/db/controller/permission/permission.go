// Package permission provides CRUD operations for the permission catalog.
package permission

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/db/models"
	"github.com/accessd/accessd/internal/rbac"
)

const nameQueryPattern = "name = ?"

var (
	// ErrPermissionNotFound is returned when a permission is not found.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrPermissionNameInvalid is returned when a permission name is not a
	// known "category:action" pair. Malformed names are rejected here, at
	// write time, never silently skipped at resolution time.
	ErrPermissionNameInvalid = errors.New("permission name must be a known category:action pair")
	// ErrPermissionNameExists is returned when the permission name is already taken.
	ErrPermissionNameExists = errors.New("permission with this name already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ParseName splits a permission name into its category and action segments
// and validates the pair against the closed statement catalog.
func ParseName(name string) (category, action string, err error) {
	name = strings.TrimSpace(name)

	category, action, found := strings.Cut(name, models.NameSeparator)
	if !found || category == "" || action == "" {
		return "", "", ErrPermissionNameInvalid
	}

	if !rbac.ValidAction(category, action) {
		return "", "", ErrPermissionNameInvalid
	}

	return category, action, nil
}

// Create creates a new permission. The category and action columns are
// derived from the name on write, keeping the denormalized pair consistent.
func Create(db *gorm.DB, name, description string) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	category, action, err := ParseName(name)
	if err != nil {
		return nil, err
	}

	name = category + models.NameSeparator + action

	var existing models.Permission
	result := db.Where(nameQueryPattern, name).First(&existing)
	if result.Error == nil {
		return nil, ErrPermissionNameExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	perm := &models.Permission{
		Name:        name,
		Category:    category,
		Action:      action,
		Description: strings.TrimSpace(description),
	}

	result = db.Create(perm)
	if result.Error != nil {
		return nil, result.Error
	}

	return perm, nil
}

// GetOrCreate fetches the permission by name, creating it when absent.
// Used by the seed path.
func GetOrCreate(db *gorm.DB, name, description string) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	category, action, err := ParseName(name)
	if err != nil {
		return nil, err
	}

	var perm models.Permission
	result := db.Where(nameQueryPattern, name).FirstOrCreate(&perm, models.Permission{
		Name:        name,
		Category:    category,
		Action:      action,
		Description: description,
	})
	if result.Error != nil {
		return nil, result.Error
	}

	return &perm, nil
}

// GetByID retrieves a permission by its ID.
func GetByID(db *gorm.DB, id uint) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perm models.Permission
	result := db.First(&perm, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, result.Error
	}

	return &perm, nil
}

// GetAll retrieves all permissions ordered by category then action.
func GetAll(db *gorm.DB) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	result := db.Order("category ASC, action ASC").Find(&perms)
	if result.Error != nil {
		return nil, result.Error
	}

	return perms, nil
}

// Delete removes a permission and its role edges in a single transaction.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := GetByID(db, id); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Permission{}, id).Error
	})
}

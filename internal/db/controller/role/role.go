// Package role provides CRUD operations for the role catalog.
package role

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/db/models"
)

const (
	nameQueryPattern   = "name = ?"
	roleIDQueryPattern = "role_id = ?"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when attempting to create/update a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleNameExists is returned when the role name is already taken.
	ErrRoleNameExists = errors.New("role with this name already exists")
	// ErrRoleProtected is returned when attempting to delete a protected role.
	ErrRoleProtected = errors.New("role is protected and cannot be deleted")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// WithPermissions is a role together with its eagerly loaded permission set,
// for UI consumption.
type WithPermissions struct {
	models.Role
	Permissions []models.Permission `json:"permissions"`
}

// Create creates a new role. The name is trimmed and must be unique
// (case-sensitive). It never upserts an existing role's associations.
func Create(db *gorm.DB, name, description string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var existing models.Role
	result := db.Where(nameQueryPattern, name).First(&existing)
	if result.Error == nil {
		return nil, ErrRoleNameExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	role := &models.Role{
		Name:        name,
		Description: strings.TrimSpace(description),
	}

	result = db.Create(role)
	if result.Error != nil {
		return nil, result.Error
	}

	return role, nil
}

// GetOrCreate fetches the role by name, creating it when absent.
// Used by the seed path, which explicitly wants idempotent creation.
func GetOrCreate(db *gorm.DB, name, description string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var role models.Role
	result := db.Where(nameQueryPattern, name).
		FirstOrCreate(&role, models.Role{Name: name, Description: description})
	if result.Error != nil {
		return nil, result.Error
	}

	return &role, nil
}

// GetByID retrieves a role by its ID.
func GetByID(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role
	result := db.First(&role, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &role, nil
}

// GetByName retrieves a role by its name.
func GetByName(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var role models.Role
	result := db.Where(nameQueryPattern, name).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &role, nil
}

// Update changes the role's name and/or description. A nil field is left
// untouched. Renaming onto another role's name fails with ErrRoleNameExists.
func Update(db *gorm.DB, id uint, name, description *string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	role, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		newName := strings.TrimSpace(*name)
		if newName == "" {
			return nil, ErrRoleNameEmpty
		}

		var other models.Role
		result := db.Where("name = ? AND id <> ?", newName, id).First(&other)
		if result.Error == nil {
			return nil, ErrRoleNameExists
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, result.Error
		}

		role.Name = newName
	}

	if description != nil {
		role.Description = strings.TrimSpace(*description)
	}

	result := db.Save(role)
	if result.Error != nil {
		return nil, result.Error
	}

	return role, nil
}

// Delete removes a role and all its permission and user edges in a single
// transaction, so no window exists where edges reference a missing role.
// Protected roles are refused with ErrRoleProtected.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	role, err := GetByID(db, id)
	if err != nil {
		return err
	}

	if role.IsProtected() {
		return ErrRoleProtected
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(roleIDQueryPattern, id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		if err := tx.Where(roleIDQueryPattern, id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Role{}, id).Error
	})
}

// GetAll retrieves all roles ordered by name.
func GetAll(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	result := db.Order("name ASC").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// GetAllWithPermissions retrieves all roles with each role's permission set
// eagerly loaded.
func GetAllWithPermissions(db *gorm.DB) ([]WithPermissions, error) {
	roles, err := GetAll(db)
	if err != nil {
		return nil, err
	}

	out := make([]WithPermissions, 0, len(roles))

	for _, r := range roles {
		perms, err := Permissions(db, r.ID)
		if err != nil {
			return nil, err
		}

		out = append(out, WithPermissions{Role: r, Permissions: perms})
	}

	return out, nil
}

// Permissions retrieves the permission set attached to the role.
func Permissions(db *gorm.DB, roleID uint) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	result := db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name ASC").
		Find(&perms)
	if result.Error != nil {
		return nil, result.Error
	}

	return perms, nil
}

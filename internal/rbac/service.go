package rbac

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/db/models"
)

// Service resolves user capabilities from the datastore.
// Resolution is recomputed on every call; the service keeps no cache, so a
// caller adding its own cache must invalidate it on any association change.
type Service struct {
	db *gorm.DB
}

// NewService creates a new rbac service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// PermissionWithRoles is one row of the role-preserving capability view.
// It exists for audit and UI display only and must never drive decisions.
type PermissionWithRoles struct {
	Category string `json:"category"`
	Action   string `json:"action"`
	RoleID   uint   `json:"roleId"`
	RoleName string `json:"roleName"`
}

// BuildUserPermissionObject computes the user's effective capability map by
// traversing user -> role -> permission edges and folding the result into
// category -> action set. A user with no roles, or roles with no
// permissions, yields the empty map; that is not an error.
func (s *Service) BuildUserPermissionObject(userID uint64) (CapabilityMap, error) {
	var rows []models.Permission

	err := s.db.Table("permissions").
		Select("DISTINCT permissions.category, permissions.action").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user permissions: %w", err)
	}

	caps := make(CapabilityMap, len(rows))

	for _, row := range rows {
		if !contains(caps[row.Category], row.Action) {
			caps[row.Category] = append(caps[row.Category], row.Action)
		}
	}

	return caps, nil
}

// PermissionsWithRoles returns the user's permissions with their origin
// roles preserved, for audit/UI display.
func (s *Service) PermissionsWithRoles(userID uint64) ([]PermissionWithRoles, error) {
	var rows []PermissionWithRoles

	err := s.db.Table("permissions").
		Select("permissions.category, permissions.action, roles.id AS role_id, roles.name AS role_name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("permissions.category, permissions.action, roles.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions with roles: %w", err)
	}

	return rows, nil
}

// UserRoleNames returns the names of all roles held by the user.
func (s *Service) UserRoleNames(userID uint64) ([]string, error) {
	var names []string

	err := s.db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return names, nil
}

// UserHasRole reports whether the user holds at least one of the required roles.
func (s *Service) UserHasRole(userID uint64, required ...string) (bool, error) {
	names, err := s.UserRoleNames(userID)
	if err != nil {
		return false, err
	}

	return HasRole(names, required...), nil
}

// UserCanExecuteAction resolves the user's capability map and checks it
// against the required statement.
func (s *Service) UserCanExecuteAction(userID uint64, required Statement) (bool, error) {
	caps, err := s.BuildUserPermissionObject(userID)
	if err != nil {
		return false, err
	}

	return CanExecuteAction(caps, required), nil
}

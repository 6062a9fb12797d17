package rbac

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func grant(t *testing.T, db *gorm.DB, role *models.Role, category, action string) {
	t.Helper()

	perm := models.Permission{
		Name:     category + models.NameSeparator + action,
		Category: category,
		Action:   action,
	}
	require.NoError(t, db.Where(models.Permission{Name: perm.Name}).FirstOrCreate(&perm).Error)
	require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
}

func assign(t *testing.T, db *gorm.DB, userID uint64, role *models.Role) {
	t.Helper()

	require.NoError(t, db.Create(&models.UserRole{UserID: userID, RoleID: role.ID}).Error)
}

func TestBuildUserPermissionObject(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	user := models.User{Username: "u1", Active: true}
	require.NoError(t, db.Create(&user).Error)

	editor := models.Role{Name: "editor"}
	auditor := models.Role{Name: "auditor"}
	require.NoError(t, db.Create(&editor).Error)
	require.NoError(t, db.Create(&auditor).Error)

	grant(t, db, &editor, "content", "read")
	grant(t, db, &editor, "content", "update")
	grant(t, db, &auditor, "audit", "view")
	// overlap: both roles grant content:read, it must appear once
	grant(t, db, &auditor, "content", "read")

	t.Run("no roles yields empty map", func(t *testing.T) {
		caps, err := svc.BuildUserPermissionObject(user.ID)
		require.NoError(t, err)
		assert.Empty(t, caps)
	})

	t.Run("union across roles, deduplicated", func(t *testing.T) {
		assign(t, db, user.ID, &editor)
		assign(t, db, user.ID, &auditor)

		caps, err := svc.BuildUserPermissionObject(user.ID)
		require.NoError(t, err)

		require.Len(t, caps, 2)
		assert.ElementsMatch(t, []string{"read", "update"}, caps["content"])
		assert.ElementsMatch(t, []string{"view"}, caps["audit"])
	})

	t.Run("role deletion strips its capabilities", func(t *testing.T) {
		require.NoError(t, db.Where("role_id = ?", auditor.ID).Delete(&models.RolePermission{}).Error)
		require.NoError(t, db.Where("role_id = ?", auditor.ID).Delete(&models.UserRole{}).Error)
		require.NoError(t, db.Delete(&auditor).Error)

		caps, err := svc.BuildUserPermissionObject(user.ID)
		require.NoError(t, err)

		require.Len(t, caps, 1)
		assert.ElementsMatch(t, []string{"read", "update"}, caps["content"])
	})

	t.Run("role with zero permissions yields empty map", func(t *testing.T) {
		bare := models.Role{Name: "bare"}
		require.NoError(t, db.Create(&bare).Error)

		other := models.User{Username: "u2", Active: true}
		require.NoError(t, db.Create(&other).Error)
		assign(t, db, other.ID, &bare)

		caps, err := svc.BuildUserPermissionObject(other.ID)
		require.NoError(t, err)
		assert.Empty(t, caps)
	})
}

func TestPermissionsWithRoles(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	user := models.User{Username: "u1", Active: true}
	require.NoError(t, db.Create(&user).Error)

	editor := models.Role{Name: "editor"}
	auditor := models.Role{Name: "auditor"}
	require.NoError(t, db.Create(&editor).Error)
	require.NoError(t, db.Create(&auditor).Error)

	grant(t, db, &editor, "content", "read")
	grant(t, db, &auditor, "content", "read")

	assign(t, db, user.ID, &editor)
	assign(t, db, user.ID, &auditor)

	rows, err := svc.PermissionsWithRoles(user.ID)
	require.NoError(t, err)

	// the shared capability stays one row per granting role
	require.Len(t, rows, 2)
	assert.Equal(t, "auditor", rows[0].RoleName)
	assert.Equal(t, "editor", rows[1].RoleName)

	for _, row := range rows {
		assert.Equal(t, "content", row.Category)
		assert.Equal(t, "read", row.Action)
	}
}

func TestUserRoleChecks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	user := models.User{Username: "u1", Active: true}
	require.NoError(t, db.Create(&user).Error)

	editor := models.Role{Name: "editor"}
	require.NoError(t, db.Create(&editor).Error)
	grant(t, db, &editor, "content", "read")
	assign(t, db, user.ID, &editor)

	names, err := svc.UserRoleNames(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, names)

	ok, err := svc.UserHasRole(user.ID, "admin", "editor")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.UserHasRole(user.ID, "admin")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.UserCanExecuteAction(user.ID, Statement{"content": {"read"}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.UserCanExecuteAction(user.ID, Statement{"content": {"read", "delete"}})
	require.NoError(t, err)
	assert.False(t, ok)
}

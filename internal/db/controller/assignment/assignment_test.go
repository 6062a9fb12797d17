package assignment

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/db/models"
	"github.com/accessd/accessd/internal/rbac"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	migrate(t, db)

	return db
}

func migrate(t *testing.T, db *gorm.DB) {
	t.Helper()

	err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
	)
	require.NoError(t, err, "failed to migrate test database")
}

func seedPermissions(t *testing.T, db *gorm.DB, names map[string][2]string) map[string]uint {
	t.Helper()

	ids := make(map[string]uint, len(names))

	for name, pair := range names {
		perm := models.Permission{Name: name, Category: pair[0], Action: pair[1]}
		require.NoError(t, db.Create(&perm).Error)
		ids[name] = perm.ID
	}

	return ids
}

func rolePermissionIDs(t *testing.T, db *gorm.DB, roleID uint) []uint {
	t.Helper()

	var ids []uint
	require.NoError(t, db.Model(&models.RolePermission{}).
		Where("role_id = ?", roleID).
		Order("permission_id ASC").
		Pluck("permission_id", &ids).Error)

	return ids
}

func TestReplaceRolePermissions(t *testing.T) {
	db := setupTestDB(t)

	role := models.Role{Name: "editor"}
	require.NoError(t, db.Create(&role).Error)

	perms := seedPermissions(t, db, map[string][2]string{
		"content:read":   {"content", "read"},
		"content:update": {"content", "update"},
		"audit:view":     {"audit", "view"},
	})

	t.Run("nil database", func(t *testing.T) {
		err := ReplaceRolePermissions(nil, role.ID, nil)
		require.ErrorIs(t, err, ErrDBNil)
	})

	t.Run("unknown role", func(t *testing.T) {
		err := ReplaceRolePermissions(db, 424242, []uint{perms["content:read"]})
		require.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("unknown permission id", func(t *testing.T) {
		err := ReplaceRolePermissions(db, role.ID, []uint{perms["content:read"], 424242})
		require.ErrorIs(t, err, ErrPermissionNotFound)
	})

	t.Run("full replace", func(t *testing.T) {
		require.NoError(t, ReplaceRolePermissions(db, role.ID,
			[]uint{perms["content:read"], perms["content:update"]}))

		require.NoError(t, ReplaceRolePermissions(db, role.ID,
			[]uint{perms["audit:view"]}))

		assert.Equal(t, []uint{perms["audit:view"]}, rolePermissionIDs(t, db, role.ID),
			"stale rows must be gone after a replace")
	})

	t.Run("idempotence", func(t *testing.T) {
		set := []uint{perms["content:read"], perms["content:update"]}

		require.NoError(t, ReplaceRolePermissions(db, role.ID, set))
		first := rolePermissionIDs(t, db, role.ID)

		require.NoError(t, ReplaceRolePermissions(db, role.ID, set))
		assert.Equal(t, first, rolePermissionIDs(t, db, role.ID))
	})

	t.Run("duplicate input ids collapse", func(t *testing.T) {
		require.NoError(t, ReplaceRolePermissions(db, role.ID,
			[]uint{perms["audit:view"], perms["audit:view"]}))

		assert.Len(t, rolePermissionIDs(t, db, role.ID), 1)
	})

	t.Run("empty set clears all edges", func(t *testing.T) {
		require.NoError(t, ReplaceRolePermissions(db, role.ID, nil))
		assert.Empty(t, rolePermissionIDs(t, db, role.ID))
	})
}

func TestReplaceUserRoles(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Username: "u1", Active: true}
	require.NoError(t, db.Create(&user).Error)

	editor := models.Role{Name: "editor"}
	auditor := models.Role{Name: "auditor"}
	require.NoError(t, db.Create(&editor).Error)
	require.NoError(t, db.Create(&auditor).Error)

	t.Run("unknown user", func(t *testing.T) {
		err := ReplaceUserRoles(db, 424242, []uint{editor.ID})
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown role", func(t *testing.T) {
		err := ReplaceUserRoles(db, user.ID, []uint{424242})
		require.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("full replace and list", func(t *testing.T) {
		require.NoError(t, ReplaceUserRoles(db, user.ID, []uint{editor.ID, auditor.ID}))

		roles, err := GetUserRoles(db, user.ID)
		require.NoError(t, err)
		require.Len(t, roles, 2)

		require.NoError(t, ReplaceUserRoles(db, user.ID, []uint{auditor.ID}))

		roles, err = GetUserRoles(db, user.ID)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, "auditor", roles[0].Name)
	})

	t.Run("empty set leaves zero roles", func(t *testing.T) {
		require.NoError(t, ReplaceUserRoles(db, user.ID, nil))

		roles, err := GetUserRoles(db, user.ID)
		require.NoError(t, err)
		assert.Empty(t, roles)
	})
}

func TestAddUserRole(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Username: "u1", Active: true}
	require.NoError(t, db.Create(&user).Error)

	editor := models.Role{Name: "editor"}
	require.NoError(t, db.Create(&editor).Error)

	require.NoError(t, AddUserRole(db, user.ID, editor.ID))
	require.NoError(t, AddUserRole(db, user.ID, editor.ID)) // idempotent

	var count int64
	db.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

// TestReplaceRacingResolution covers the transactional guarantee of the full
// replace: a capability resolution racing an assignment replace must never
// observe the role between delete and insert, i.e. with zero capabilities,
// when both the old and the new permission set are non-empty.
func TestReplaceRacingResolution(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "race.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// single connection: forces writers and readers through the same pipe so
	// the transaction boundary is what serializes them
	sqlDB.SetMaxOpenConns(1)

	migrate(t, db)

	user := models.User{Username: "u1", Active: true}
	require.NoError(t, db.Create(&user).Error)

	role := models.Role{Name: "editor"}
	require.NoError(t, db.Create(&role).Error)

	perms := seedPermissions(t, db, map[string][2]string{
		"content:read":   {"content", "read"},
		"content:update": {"content", "update"},
	})

	require.NoError(t, db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error)
	require.NoError(t, ReplaceRolePermissions(db, role.ID, []uint{perms["content:read"]}))

	svc := rbac.NewService(db)

	const iterations = 50

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		setA := []uint{perms["content:read"]}
		setB := []uint{perms["content:read"], perms["content:update"]}

		for i := 0; i < iterations; i++ {
			set := setA
			if i%2 == 0 {
				set = setB
			}

			if err := ReplaceRolePermissions(db, role.ID, set); err != nil {
				t.Errorf("replace failed: %v", err)
				return
			}
		}
	}()

	for i := 0; i < iterations; i++ {
		caps, err := svc.BuildUserPermissionObject(user.ID)
		require.NoError(t, err)

		assert.NotEmpty(t, caps, "resolution observed the half-done replace")
		assert.Contains(t, caps["content"], "read")
	}

	wg.Wait()
}

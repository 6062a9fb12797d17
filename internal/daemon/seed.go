package daemon

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/config"
	"github.com/accessd/accessd/internal/db/controller/assignment"
	"github.com/accessd/accessd/internal/db/controller/permission"
	"github.com/accessd/accessd/internal/db/controller/role"
	"github.com/accessd/accessd/internal/db/models"
	"github.com/accessd/accessd/internal/rbac"
)

// bootstrapPassword is the initial admin credential, to be rotated by the
// identity provider on first login.
const bootstrapPassword = "changeme"

// seed creates the statement catalog, the protected roles with their default
// grants and the bootstrap admin account. Every step is idempotent, so a
// restart against an already seeded database changes nothing.
func seed(_ *config.Config, db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		permIDs := make(map[string]uint)

		for category, actions := range rbac.Statements {
			for _, action := range actions {
				name := category + models.NameSeparator + action

				perm, err := permission.GetOrCreate(tx, name, "")
				if err != nil {
					return err
				}

				permIDs[name] = perm.ID
			}
		}

		for roleName, grants := range rbac.DefaultRoleGrants {
			// default grants apply on first creation only; an existing role
			// keeps whatever permission set operators left it with, even an
			// empty one
			_, err := role.GetByName(tx, roleName)
			if err == nil {
				continue
			}
			if !errors.Is(err, role.ErrRoleNotFound) {
				return err
			}

			r, err := role.Create(tx, roleName, "")
			if err != nil {
				return err
			}

			var ids []uint
			for category, actions := range grants {
				for _, action := range actions {
					ids = append(ids, permIDs[category+models.NameSeparator+action])
				}
			}

			if err := assignment.ReplaceRolePermissions(tx, r.ID, ids); err != nil {
				return err
			}
		}

		return seedAdminUser(tx)
	})
}

func seedAdminUser(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		Username: "admin",
		Password: models.HashPassword(bootstrapPassword),
		Active:   true,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return err
	}

	superadmin, err := role.GetByName(tx, rbac.RoleSuperadmin)
	if err != nil {
		return err
	}

	log.Warn().Str("username", admin.Username).
		Msg("bootstrap admin account created with the default password, change it")

	return assignment.AddUserRole(tx, admin.ID, superadmin.ID)
}

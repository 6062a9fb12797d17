// Package me provides the JSON handlers exposing the authenticated user's own
// resolved roles and capabilities.
package me

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/config"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/web/handler"
)

const (
	// Path is the base path for self-inspection.
	Path = handler.RootPath + "me"

	// RoutePermissions returns the caller's capability map.
	RoutePermissions = Path + "/permissions"
	// RouteRoles returns the caller's role names.
	RouteRoles = Path + "/roles"

	// QueryWithRoles requests the role-preserving capability view.
	QueryWithRoles = "withRoles"
)

// Service provides the self-inspection handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	rbac *rbac.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Both routes only require an authenticated identity;
// a user may always inspect their own capabilities.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, rbacService *rbac.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.rbac = rbacService

	app.Get(RoutePermissions, rbac.RequireAuth(), s.Permissions)
	app.Get(RouteRoles, rbac.RequireAuth(), s.Roles)
}

// Permissions returns the caller's resolved capability map. With
// ?withRoles=true the role-preserving view is returned instead; that view is
// for display only and is never consulted for decisions.
func (s *Service) Permissions(c *fiber.Ctx) error {
	identity, _ := rbac.CurrentUser(c)

	if c.QueryBool(QueryWithRoles) {
		rows, err := s.rbac.PermissionsWithRoles(identity.UserID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", identity.UserID).
				Msg("failed to resolve permissions with roles")

			return c.SendStatus(fiber.StatusInternalServerError)
		}

		return c.JSON(fiber.Map{"permissions": rows})
	}

	caps, err := s.rbac.BuildUserPermissionObject(identity.UserID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", identity.UserID).
			Msg("failed to resolve permissions")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{"permissions": caps})
}

// Roles returns the caller's role names.
func (s *Service) Roles(c *fiber.Ctx) error {
	identity, _ := rbac.CurrentUser(c)

	names, err := s.rbac.UserRoleNames(identity.UserID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", identity.UserID).Msg("failed to resolve roles")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if names == nil {
		names = []string{}
	}

	return c.JSON(fiber.Map{"roles": names})
}

// Package users provides the JSON handlers for user-to-role assignment.
package users

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/config"
	"github.com/accessd/accessd/internal/db/controller/assignment"
	auditctl "github.com/accessd/accessd/internal/db/controller/audit"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/web/handler"
)

const (
	// Path is the base path for user role management.
	Path = handler.RootPath + "users"

	// RouteRoles addresses a user's role set.
	RouteRoles = Path + "/:id/roles"
)

type assignInput struct {
	RoleIDs []uint `json:"roleIds" validate:"required"`
}

// Service provides the user role assignment handlers.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, rbacService *rbac.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Get(RouteRoles,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryRole: {rbac.ActionRead}}),
		s.Roles,
	)
	app.Put(RouteRoles,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryRole: {rbac.ActionAssign}}),
		s.AssignRoles,
	)
}

// Roles returns the roles held by the user.
func (s *Service) Roles(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	roles, err := assignment.GetUserRoles(s.db, id)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("failed to list user roles")
		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"userId": id, "roles": roles})
}

// AssignRoles replaces the user's complete role set.
func (s *Service) AssignRoles(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	var input assignInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := assignment.ReplaceUserRoles(s.db, id, input.RoleIDs); err != nil {
		log.Warn().Err(err).Uint64("user_id", id).Msg("failed to replace user roles")
		return handler.Error(c, err)
	}

	var actor *uint64
	if identity, ok := rbac.CurrentUser(c); ok {
		actor = &identity.UserID
	}

	_, err := auditctl.Record(s.db, auditctl.Entry{
		ActorID:     actor,
		Action:      auditctl.ActionAssignUserRoles,
		EntityType:  auditctl.EntityUser,
		EntityID:    strconv.FormatUint(id, 10),
		Description: "replaced user role set",
		Changes:     input,
		IPAddress:   c.IP(),
		UserAgent:   c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		// audit failure never rolls back the mutation
		log.Error().Err(err).Msg("failed to write audit entry")
	}

	return c.JSON(fiber.Map{"userId": id, "roleIds": input.RoleIDs})
}

// Package audit provides the JSON handlers for reading the audit trail.
package audit

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/config"
	auditctl "github.com/accessd/accessd/internal/db/controller/audit"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/web/handler"
)

const (
	// Path is the base path for the audit trail.
	Path = handler.RootPath + "audit"

	// RouteForUser lists one actor's entries.
	RouteForUser = Path + "/users/:id"
	// RouteForEntity lists the entries touching one entity.
	RouteForEntity = Path + "/:entityType/:entityId"

	// QueryLimit and QueryOffset page through the recent entries.
	QueryLimit  = "limit"
	QueryOffset = "offset"
)

// Service provides the audit trail handlers.
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

	guard := rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryAudit: {rbac.ActionView}})

	app.Get(Path, guard, s.Recent)
	app.Get(RouteForUser, guard, s.ForUser)
	app.Get(RouteForEntity, guard, s.ForEntity)
}

// Recent returns the newest audit entries, paged.
func (s *Service) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt(QueryLimit, auditctl.DefaultLimit)
	offset := c.QueryInt(QueryOffset, 0)

	rows, err := auditctl.ListRecent(s.db, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list audit entries")
		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"entries": rows})
}

// ForUser returns the entries recorded for one acting user, newest first.
func (s *Service) ForUser(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	limit := c.QueryInt(QueryLimit, auditctl.DefaultLimit)

	rows, err := auditctl.ListForUser(s.db, id, limit)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("failed to list audit entries")
		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"entries": rows})
}

// ForEntity returns all entries touching one entity, newest first.
func (s *Service) ForEntity(c *fiber.Ctx) error {
	entityType := c.Params("entityType")
	entityID := c.Params("entityId")

	rows, err := auditctl.ListForEntity(s.db, entityType, entityID)
	if err != nil {
		log.Error().Err(err).Str("entity_type", entityType).Str("entity_id", entityID).
			Msg("failed to list audit entries")

		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"entries": rows})
}

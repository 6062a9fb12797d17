// Package permissions provides the JSON handlers for the permission catalog.
package permissions

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/config"
	auditctl "github.com/accessd/accessd/internal/db/controller/audit"
	"github.com/accessd/accessd/internal/db/controller/permission"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/web/handler"
)

const (
	// Path is the base path for permission management.
	Path = handler.RootPath + "permissions"

	// RouteByID addresses a single permission.
	RouteByID = Path + "/:id"
)

type createInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// Service provides the permission catalog handlers.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
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
	s.validator = validator.New()

	app.Get(Path,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryPermission: {rbac.ActionRead}}),
		s.List,
	)
	app.Post(Path,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryPermission: {rbac.ActionCreate}}),
		s.Create,
	)
	app.Delete(RouteByID,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryPermission: {rbac.ActionDelete}}),
		s.Delete,
	)
}

// List returns all permissions grouped by category.
func (s *Service) List(c *fiber.Ctx) error {
	perms, err := permission.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list permissions")
		return handler.Error(c, err)
	}

	grouped := make(map[string][]any)
	for _, p := range perms {
		grouped[p.Category] = append(grouped[p.Category], p)
	}

	return c.JSON(fiber.Map{"permissions": perms, "byCategory": grouped})
}

// Create creates a permission. The name must be a known category:action pair.
func (s *Service) Create(c *fiber.Ctx) error {
	var input createInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	created, err := permission.Create(s.db, input.Name, input.Description)
	if err != nil {
		log.Warn().Err(err).Str("name", input.Name).Msg("failed to create permission")
		return handler.Error(c, err)
	}

	s.audit(c, auditctl.ActionCreatePermission, created.ID, "created permission "+created.Name, input)

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Delete removes a permission and its role edges.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	if err := permission.Delete(s.db, uint(id)); err != nil {
		log.Warn().Err(err).Uint64("permission_id", id).Msg("failed to delete permission")
		return handler.Error(c, err)
	}

	s.audit(c, auditctl.ActionDeletePermission, uint(id), "deleted permission", nil)

	return c.JSON(fiber.Map{"deleted": id})
}

func (s *Service) audit(c *fiber.Ctx, action string, permissionID uint, description string, changes any) {
	var actor *uint64
	if identity, ok := rbac.CurrentUser(c); ok {
		actor = &identity.UserID
	}

	_, err := auditctl.Record(s.db, auditctl.Entry{
		ActorID:     actor,
		Action:      action,
		EntityType:  auditctl.EntityPermission,
		EntityID:    strconv.FormatUint(uint64(permissionID), 10),
		Description: description,
		Changes:     changes,
		IPAddress:   c.IP(),
		UserAgent:   c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		// audit failure never rolls back the mutation
		log.Error().Err(err).Str("action", action).Msg("failed to write audit entry")
	}
}

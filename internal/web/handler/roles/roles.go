// Package roles provides the JSON handlers for the role catalog and for
// role-to-permission assignment.
package roles

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/accessd/accessd/internal/config"
	"github.com/accessd/accessd/internal/db/controller/assignment"
	auditctl "github.com/accessd/accessd/internal/db/controller/audit"
	"github.com/accessd/accessd/internal/db/controller/role"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/web/handler"
)

const (
	// Path is the base path for role management.
	Path = handler.RootPath + "roles"

	// RouteByID addresses a single role.
	RouteByID = Path + "/:id"
	// RoutePermissions addresses a role's permission set.
	RoutePermissions = Path + "/:id/permissions"

	// QueryWithPermissions requests the permission-expanded role list.
	QueryWithPermissions = "withPermissions"
)

type createInput struct {
	Name          string `json:"name" validate:"required,max=100"`
	Description   string `json:"description" validate:"max=255"`
	PermissionIDs []uint `json:"permissionIds"`
}

type updateInput struct {
	Name          *string `json:"name" validate:"omitempty,max=100"`
	Description   *string `json:"description" validate:"omitempty,max=255"`
	PermissionIDs *[]uint `json:"permissionIds"`
}

type assignInput struct {
	PermissionIDs []uint `json:"permissionIds" validate:"required"`
}

// Service provides the role catalog handlers.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	rbac      *rbac.Service
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
	s.rbac = rbacService
	s.validator = validator.New()

	app.Get(Path,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryRole: {rbac.ActionRead}}),
		s.List,
	)
	app.Post(Path,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryRole: {rbac.ActionCreate}}),
		s.Create,
	)
	app.Patch(RouteByID,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryRole: {rbac.ActionUpdate}}),
		s.Update,
	)
	app.Delete(RouteByID,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryRole: {rbac.ActionDelete}}),
		s.Delete,
	)
	app.Put(RoutePermissions,
		rbac.RequirePermission(rbacService, rbac.Statement{rbac.CategoryPermission: {rbac.ActionAssign}}),
		s.AssignPermissions,
	)
}

// List returns all roles, optionally with each role's permission set.
func (s *Service) List(c *fiber.Ctx) error {
	if c.QueryBool(QueryWithPermissions) {
		roles, err := role.GetAllWithPermissions(s.db)
		if err != nil {
			log.Error().Err(err).Msg("failed to list roles with permissions")
			return handler.Error(c, err)
		}

		return c.JSON(fiber.Map{"roles": roles})
	}

	roles, err := role.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list roles")
		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"roles": roles})
}

// Create creates a role and optionally its initial permission set.
func (s *Service) Create(c *fiber.Ctx) error {
	var input createInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	created, err := role.Create(s.db, input.Name, input.Description)
	if err != nil {
		log.Warn().Err(err).Str("name", input.Name).Msg("failed to create role")
		return handler.Error(c, err)
	}

	if len(input.PermissionIDs) > 0 {
		if err := assignment.ReplaceRolePermissions(s.db, created.ID, input.PermissionIDs); err != nil {
			log.Warn().Err(err).Uint("role_id", created.ID).Msg("failed to assign initial permissions")
			return handler.Error(c, err)
		}
	}

	s.audit(c, auditctl.ActionCreateRole, created.ID, "created role "+created.Name, input)

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update changes the role's name, description and/or permission set.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	var input updateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updated, err := role.Update(s.db, uint(id), input.Name, input.Description)
	if err != nil {
		log.Warn().Err(err).Uint64("role_id", id).Msg("failed to update role")
		return handler.Error(c, err)
	}

	if input.PermissionIDs != nil {
		if err := assignment.ReplaceRolePermissions(s.db, updated.ID, *input.PermissionIDs); err != nil {
			log.Warn().Err(err).Uint("role_id", updated.ID).Msg("failed to replace permissions")
			return handler.Error(c, err)
		}
	}

	s.audit(c, auditctl.ActionUpdateRole, updated.ID, "updated role "+updated.Name, input)

	return c.JSON(updated)
}

// Delete removes a role. Protected roles are refused.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	if err := role.Delete(s.db, uint(id)); err != nil {
		log.Warn().Err(err).Uint64("role_id", id).Msg("failed to delete role")
		return handler.Error(c, err)
	}

	s.audit(c, auditctl.ActionDeleteRole, uint(id), "deleted role", nil)

	return c.JSON(fiber.Map{"deleted": id})
}

// AssignPermissions replaces the role's complete permission set.
func (s *Service) AssignPermissions(c *fiber.Ctx) error {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ErrInvalidID})
	}

	var input assignInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := assignment.ReplaceRolePermissions(s.db, uint(id), input.PermissionIDs); err != nil {
		log.Warn().Err(err).Uint64("role_id", id).Msg("failed to replace permissions")
		return handler.Error(c, err)
	}

	s.audit(c, auditctl.ActionAssignPermissions, uint(id), "replaced role permission set", input)

	return c.JSON(fiber.Map{"roleId": id, "permissionIds": input.PermissionIDs})
}

func (s *Service) audit(c *fiber.Ctx, action string, roleID uint, description string, changes any) {
	var actor *uint64
	if identity, ok := rbac.CurrentUser(c); ok {
		actor = &identity.UserID
	}

	_, err := auditctl.Record(s.db, auditctl.Entry{
		ActorID:     actor,
		Action:      action,
		EntityType:  auditctl.EntityRole,
		EntityID:    strconv.FormatUint(uint64(roleID), 10),
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

// Package handler holds the helpers shared by the JSON route handlers.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/accessd/accessd/internal/db/controller/assignment"
	"github.com/accessd/accessd/internal/db/controller/permission"
	"github.com/accessd/accessd/internal/db/controller/role"
)

// ErrInvalidID is the message returned for a non-numeric or non-positive id
// path parameter.
const ErrInvalidID = "invalid id"

// StatusFromError maps the controller sentinel errors onto HTTP status codes.
// Unknown errors map to 500 and must not leak their text to the client.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, role.ErrRoleNotFound),
		errors.Is(err, permission.ErrPermissionNotFound),
		errors.Is(err, assignment.ErrRoleNotFound),
		errors.Is(err, assignment.ErrPermissionNotFound),
		errors.Is(err, assignment.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, role.ErrRoleNameExists),
		errors.Is(err, permission.ErrPermissionNameExists):
		return fiber.StatusConflict
	case errors.Is(err, role.ErrRoleNameEmpty),
		errors.Is(err, permission.ErrPermissionNameInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, role.ErrRoleProtected):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// Error renders a controller error as a JSON response with the mapped status.
func Error(c *fiber.Ctx, err error) error {
	status := StatusFromError(err)
	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// ParseID parses a positive integer id path parameter.
func ParseID(c *fiber.Ctx, name string) (uint64, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}

	return uint64(id), true
}

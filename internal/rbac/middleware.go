package rbac

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/accessd/accessd/internal/web/session"
)

// CurrentUser reads the authenticated identity from the request's session
// cookie. The second return value is false when no valid identity is present.
func CurrentUser(c *fiber.Ctx) (session.Data, bool) {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return session.Data{}, false
	}

	sessData := new(session.Data)
	if err := sessData.Read(sessionID); err != nil {
		return session.Data{}, false
	}

	if sessData.UserID == 0 {
		return session.Data{}, false
	}

	return *sessData, true
}

// RequireAuth creates Fiber middleware that requires an authenticated identity.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrUnauthorized.Error()})
		}

		return c.Next()
	}
}

// RequireRole creates Fiber middleware that requires at least one of the
// given roles (OR semantics), for coarse-grained gating.
func RequireRole(svc *Service, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrUnauthorized.Error()})
		}

		hasRole, err := svc.UserHasRole(identity.UserID, roles...)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", identity.UserID).Strs("roles", roles).
				Msg("failed to check roles")

			return c.SendStatus(fiber.StatusInternalServerError)
		}

		if !hasRole {
			log.Warn().Uint64("user_id", identity.UserID).Strs("roles", roles).
				Msg("user lacks required role")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": ErrForbidden.Error()})
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires the full
// statement to be satisfied by the user's resolved capability map.
func RequirePermission(svc *Service, required Statement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrUnauthorized.Error()})
		}

		allowed, err := svc.UserCanExecuteAction(identity.UserID, required)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", identity.UserID).
				Msg("failed to check permission")

			return c.SendStatus(fiber.StatusInternalServerError)
		}

		if !allowed {
			log.Warn().Uint64("user_id", identity.UserID).
				Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": ErrForbidden.Error()})
		}

		return c.Next()
	}
}

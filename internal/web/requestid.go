package web

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// RequestID attaches a random correlation id to every request, honoring one
// already set by an upstream proxy.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			generated, err := generateRequestID()
			if err != nil {
				log.Error().Err(err).Msg("failed to generate request id")
			}

			id = generated
		}

		c.Locals(HeaderRequestID, id)
		c.Set(HeaderRequestID, id)

		return c.Next()
	}
}

// generateRequestID generates a new secure random request ID.
func generateRequestID() (string, error) {
	// 16 bytes = 128 bits
	b := make([]byte, 16) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

package middleware

import (
	"gridreserve-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const partyLocal = "party"

// RequireAuth ensures a party is in the session. Returns 401 with the
// standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		party := c.Locals(partyLocal)
		if party == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", party)
		return c.Next()
	}
}

// GetParty returns the session party from Locals (nil if not logged in).
func GetParty(c *fiber.Ctx) interface{} {
	return c.Locals(partyLocal)
}

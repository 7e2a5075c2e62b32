package health

import (
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	return c.JSON(h.Service.Collect(c.Context()))
}

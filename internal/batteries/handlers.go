package batteries

import (
	"gridreserve-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers exposes read access to the registry. Registration goes through
// the aggregators module so its policy decides who may register.
type Handlers struct {
	Service *Service
}

// GetBattery GET /api/v1/batteries/:owner_id
func (h *Handlers) GetBattery(c *fiber.Ctx) error {
	ownerID, err := uuid.Parse(c.Params("owner_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for owner_id", 400, nil)
	}
	battery, err := h.Service.Get(c.Context(), ownerID)
	if err != nil {
		if err == ErrBatteryNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Battery found", fiber.Map{"battery": battery}, nil)
}

// ListBatteries GET /api/v1/batteries?aggregator_id=...
func (h *Handlers) ListBatteries(c *fiber.Ctx) error {
	aggregatorID, err := uuid.Parse(c.Query("aggregator_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for aggregator_id", 400, nil)
	}
	list, err := h.Service.ListByAggregator(c.Context(), aggregatorID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Batteries found", fiber.Map{"batteries": list}, nil)
}

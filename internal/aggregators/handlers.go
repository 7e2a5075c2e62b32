package aggregators

import (
	"gridreserve-backend/internal/batteries"
	"gridreserve-backend/internal/middleware"
	"gridreserve-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// CreateAggregator POST /api/v1/aggregators/create
func (h *Handlers) CreateAggregator(c *fiber.Ctx) error {
	var body struct {
		Name              string `json:"name"`
		AdminID           string `json:"admin_id"`
		CommissionRatePct int64  `json:"commission_rate_pct"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Name == "" || body.AdminID == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	adminID, err := uuid.Parse(body.AdminID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for admin_id", 400, nil)
	}

	agg, err := h.Service.Create(c.Context(), body.Name, adminID, body.CommissionRatePct)
	if err != nil {
		if err == ErrInvalidCommissionRate {
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Aggregator created", fiber.Map{"aggregator": agg}, nil)
}

// GetAggregator GET /api/v1/aggregators/:id
func (h *Handlers) GetAggregator(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for aggregator id", 400, nil)
	}
	agg, err := h.Service.Get(c.Context(), id)
	if err != nil {
		if err == ErrAggregatorNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Aggregator found", fiber.Map{"aggregator": agg}, nil)
}

// RegisterBattery POST /api/v1/aggregators/register-battery
func (h *Handlers) RegisterBattery(c *fiber.Ctx) error {
	var body struct {
		AggregatorID string `json:"aggregator_id"`
		OwnerID      string `json:"owner_id"`
		CapacityKwh  int64  `json:"capacity_kwh"`
		InitialSoc   int64  `json:"initial_soc"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.AggregatorID == "" || body.OwnerID == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	aggregatorID, err := uuid.Parse(body.AggregatorID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for aggregator_id", 400, nil)
	}
	ownerID, err := uuid.Parse(body.OwnerID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for owner_id", 400, nil)
	}

	actor := getActor(c)
	if actor == nil || actor.PartyID == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	actorID, err := uuid.Parse(actor.PartyID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	battery, err := h.Service.RegisterBattery(c.Context(), aggregatorID, actorID, ownerID, body.CapacityKwh, body.InitialSoc)
	if err != nil {
		statusMap := map[string]int{
			ErrAggregatorNotFound.Error():        404,
			ErrRegistrationRefused.Error():       403,
			batteries.ErrInvalidCapacity.Error(): 400,
			batteries.ErrInvalidSoc.Error():      400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Battery registered", fiber.Map{"battery": battery}, nil)
}

type actor struct {
	PartyID      string
	Role         string
	AggregatorID string
}

func getActor(c *fiber.Ctx) *actor {
	p, ok := middleware.GetParty(c).(map[string]interface{})
	if !ok {
		return nil
	}
	partyID, _ := p["party_id"].(string)
	role, _ := p["role"].(string)
	aggID := ""
	if a, ok := p["aggregator_id"]; ok && a != nil {
		if s, ok := a.(string); ok {
			aggID = s
		}
	}
	return &actor{PartyID: partyID, Role: role, AggregatorID: aggID}
}

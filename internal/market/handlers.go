package market

import (
	"gridreserve-backend/internal/middleware"
	"gridreserve-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// ConfigureSession POST /api/v1/market/sessions
func (h *Handlers) ConfigureSession(c *fiber.Ctx) error {
	var body struct {
		OpenAt            int64  `json:"open_at"`
		CloseAt           int64  `json:"close_at"`
		ResultsAt         int64  `json:"results_at"`
		RequiredEnergyKwh int64  `json:"required_energy_kwh"`
		Reserve           string `json:"reserve"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	session, err := h.Service.Configure(c.Context(), body.OpenAt, body.CloseAt, body.ResultsAt, body.RequiredEnergyKwh, body.Reserve)
	if err != nil {
		statusMap := map[string]int{
			ErrInvalidSchedule.Error(): 400,
			ErrInvalidReserve.Error():  400,
			ErrInvalidDemand.Error():   400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Market session configured", fiber.Map{"session": session}, nil)
}

// ReconfigureSession PUT /api/v1/market/sessions/:session_id
func (h *Handlers) ReconfigureSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for session_id", 400, nil)
	}
	var body struct {
		OpenAt    int64 `json:"open_at"`
		CloseAt   int64 `json:"close_at"`
		ResultsAt int64 `json:"results_at"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	session, err := h.Service.Reconfigure(c.Context(), sessionID, body.OpenAt, body.CloseAt, body.ResultsAt)
	if err != nil {
		statusMap := map[string]int{
			ErrSessionNotFound.Error(): 404,
			ErrInvalidSchedule.Error(): 400,
			ErrSessionHasBids.Error():  409,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Market session updated", fiber.Map{"session": session}, nil)
}

// GetSession GET /api/v1/market/sessions/:session_id
func (h *Handlers) GetSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for session_id", 400, nil)
	}
	session, phase, err := h.Service.Get(c.Context(), sessionID)
	if err != nil {
		if err == ErrSessionNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Market session found", fiber.Map{
		"session": session,
		"phase":   phase,
	}, nil)
}

// PlaceBid POST /api/v1/market/sessions/:session_id/bids
// The bidder aggregator comes from the session party, not the body.
func (h *Handlers) PlaceBid(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for session_id", 400, nil)
	}
	var body struct {
		BatteryOwnerID string `json:"battery_owner_id"`
		AmountKwh      int64  `json:"amount_kwh"`
		Price          int64  `json:"price"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.BatteryOwnerID == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	ownerID, err := uuid.Parse(body.BatteryOwnerID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for battery_owner_id", 400, nil)
	}

	actor := getActor(c)
	if actor == nil || actor.AggregatorID == "" {
		return response.Error(c, "Party not associated with an aggregator", 403, nil)
	}
	aggregatorID, err := uuid.Parse(actor.AggregatorID)
	if err != nil {
		return response.Error(c, "Party not associated with an aggregator", 403, nil)
	}

	bid, err := h.Service.PlaceBid(c.Context(), sessionID, aggregatorID, ownerID, body.AmountKwh, body.Price)
	if err != nil {
		statusMap := map[string]int{
			ErrSessionNotFound.Error():   404,
			ErrMarketClosed.Error():      409,
			ErrInvalidBid.Error():        400,
			ErrUnauthorizedOwner.Error(): 403,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Bid placed", fiber.Map{"bid": bid}, nil)
}

// SelectBid POST /api/v1/market/sessions/:session_id/bids/:bid_id/select
func (h *Handlers) SelectBid(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for session_id", 400, nil)
	}
	bidID, err := c.ParamsInt("bid_id")
	if err != nil {
		return response.Error(c, "Invalid bid_id", 400, nil)
	}

	actor := getActor(c)
	if actor == nil || actor.PartyID == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	selectorID, err := uuid.Parse(actor.PartyID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	bid, err := h.Service.SelectBid(c.Context(), sessionID, int64(bidID), selectorID)
	if err != nil {
		statusMap := map[string]int{
			ErrSessionNotFound.Error(): 404,
			ErrBidNotFound.Error():     404,
			ErrMarketStillOpen.Error(): 409,
			ErrAlreadySelected.Error(): 409,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Bid selected", fiber.Map{"bid": bid}, nil)
}

// ListBids GET /api/v1/market/sessions/:session_id/bids
func (h *Handlers) ListBids(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for session_id", 400, nil)
	}
	bids, err := h.Service.ListBids(c.Context(), sessionID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Bids found", fiber.Map{"bids": bids}, nil)
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

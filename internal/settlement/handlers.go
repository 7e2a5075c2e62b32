package settlement

import (
	"fmt"

	"gridreserve-backend/internal/batteries"
	"gridreserve-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Engine *Engine
	Rail   ValueTransferrer
}

// SettleBid POST /api/v1/settlement/sessions/:session_id/bids/:bid_id/settle
func (h *Handlers) SettleBid(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for session_id", 400, nil)
	}
	bidID, err := c.ParamsInt("bid_id")
	if err != nil {
		return response.Error(c, "Invalid bid_id", 400, nil)
	}
	var body struct {
		PaymentValue int64 `json:"payment_value"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	res, err := h.Engine.Settle(c.Context(), sessionID, int64(bidID), body.PaymentValue)
	if err != nil {
		statusMap := map[string]int{
			ErrSessionNotFound.Error():           404,
			ErrBidNotFound.Error():               404,
			ErrNotSelected.Error():               409,
			ErrAlreadySettled.Error():            409,
			ErrTooEarly.Error():                  409,
			ErrInsufficientPayment.Error():       402,
			ErrAggregatorNotFound.Error():        404,
			batteries.ErrBatteryNotFound.Error(): 404,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Bid settled", fiber.Map{"settlement": res}, nil)
}

// GetBalance GET /api/v1/settlement/balances/:account_id
func (h *Handlers) GetBalance(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("account_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for account_id", 400, nil)
	}
	amount, err := h.Engine.Balance(c.Context(), accountID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Balance found", fiber.Map{
		"account_id": accountID,
		"amount":     amount,
	}, nil)
}

// PayOut POST /api/v1/settlement/pay-out
func (h *Handlers) PayOut(c *fiber.Ctx) error {
	if h.Rail == nil {
		return response.Error(c, "Value transfer rail not configured", 500, nil)
	}
	results, err := h.Engine.PayOut(c.Context(), h.Rail)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Payout processed", fiber.Map{"payouts": results}, nil)
}

// ExportStatement GET /api/v1/settlement/sessions/:session_id/statement.xlsx
func (h *Handlers) ExportStatement(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for session_id", 400, nil)
	}

	session, err := sessionByID(c.Context(), h.Engine, sessionID)
	if err != nil {
		if err == ErrSessionNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	rows, err := h.Engine.StatementRows(c.Context(), sessionID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	data, err := BuildStatementXLSX(session, rows)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=statement-%s.xlsx", sessionID))
	return c.Send(data)
}

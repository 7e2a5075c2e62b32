package auth

import (
	"context"

	"gridreserve-backend/internal/middleware"
	"gridreserve-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const partySessionsPrefix = "party_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	PartyFinder PartyFinder
	Rdb         *redis.Client
	Config      middleware.SessionConfig
}

// Login POST /api/v1/auth/login — authenticate, create session, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.PartyFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}

	party, err := h.PartyFinder.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		switch err {
		case ErrEmailPasswordRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrInvalidEmail, ErrIncorrectPassword:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	var aggIDStr *string
	if party.AggregatorID != nil {
		s := party.AggregatorID.String()
		aggIDStr = &s
	}

	middleware.SetSessionParty(c, middleware.SessionParty{
		PartyID:      party.PartyID.String(),
		Fullname:     party.Fullname,
		Email:        party.Email,
		Role:         party.Role,
		AggregatorID: aggIDStr,
	})

	if err := h.Rdb.SAdd(context.Background(), partySessionsPrefix+party.PartyID.String(), sessionID).Err(); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"party": fiber.Map{
			"party_id":      party.PartyID.String(),
			"fullname":      party.Fullname,
			"email":         party.Email,
			"role":          party.Role,
			"aggregator_id": aggIDStr,
		},
	}, nil)
}

// Me GET /api/v1/auth/me — return current session party.
func (h *Handlers) Me(c *fiber.Ctx) error {
	party, err := VerifyParty(middleware.GetParty(c))
	if err != nil {
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"party": party}, nil)
}

// Logout DELETE /api/v1/auth/logout — remove session tracking, delete the
// Redis key and clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	party, err := VerifyParty(middleware.GetParty(c))
	if err != nil {
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}

	ctx := context.Background()
	if sessionID != "" {
		_ = h.Rdb.SRem(ctx, partySessionsPrefix+party.PartyID, sessionID).Err()
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}

	middleware.DestroySession(c)
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logout successful", fiber.Map{}, nil)
}

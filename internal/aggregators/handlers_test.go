package aggregators

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"gridreserve-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAggregatorApp(t *testing.T, policy RegistrationPolicy, party map[string]interface{}) (*fiber.App, *Service) {
	svc := setupAggregatorTest(t, policy)
	h := &Handlers{Service: svc}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if party != nil {
			c.Locals("party", party)
		}
		return c.Next()
	})
	app.Post("/api/v1/aggregators/create", h.CreateAggregator)
	app.Get("/api/v1/aggregators/:id", h.GetAggregator)
	app.Post("/api/v1/aggregators/register-battery", h.RegisterBattery)
	return app, svc
}

func TestCreateAggregator_HTTP(t *testing.T) {
	app, _ := setupAggregatorApp(t, AdminOnly{}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"name":                "fleet",
		"admin_id":            uuid.NewString(),
		"commission_rate_pct": 5,
	})
	req := httptest.NewRequest("POST", "/api/v1/aggregators/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCreateAggregator_BadRate(t *testing.T) {
	app, _ := setupAggregatorApp(t, AdminOnly{}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"name":                "fleet",
		"admin_id":            uuid.NewString(),
		"commission_rate_pct": 150,
	})
	req := httptest.NewRequest("POST", "/api/v1/aggregators/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetAggregator_NotFound(t *testing.T) {
	app, _ := setupAggregatorApp(t, AdminOnly{}, nil)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/aggregators/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRegisterBattery_HTTP(t *testing.T) {
	admin := uuid.New()
	app, svc := setupAggregatorApp(t, AdminOnly{}, map[string]interface{}{
		"party_id": admin.String(),
		"role":     "aggregator_admin",
	})

	agg, err := svc.Create(context.Background(), "fleet", admin, 5)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]interface{}{
		"aggregator_id": agg.AggregatorID.String(),
		"owner_id":      uuid.NewString(),
		"capacity_kwh":  100,
		"initial_soc":   80,
	})
	req := httptest.NewRequest("POST", "/api/v1/aggregators/register-battery", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, svc.DB.Model(&domain.Battery{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterBattery_Refused(t *testing.T) {
	stranger := uuid.New()
	app, svc := setupAggregatorApp(t, AdminOnly{}, map[string]interface{}{
		"party_id": stranger.String(),
		"role":     "battery_owner",
	})

	agg, err := svc.Create(context.Background(), "fleet", uuid.New(), 5)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]interface{}{
		"aggregator_id": agg.AggregatorID.String(),
		"owner_id":      uuid.NewString(),
		"capacity_kwh":  100,
		"initial_soc":   80,
	})
	req := httptest.NewRequest("POST", "/api/v1/aggregators/register-battery", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

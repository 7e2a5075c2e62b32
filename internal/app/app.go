package app

import (
	"net/http"
	"time"

	"gridreserve-backend/internal/aggregators"
	"gridreserve-backend/internal/audit"
	"gridreserve-backend/internal/auth"
	"gridreserve-backend/internal/batteries"
	"gridreserve-backend/internal/config"
	"gridreserve-backend/internal/database"
	"gridreserve-backend/internal/health"
	"gridreserve-backend/internal/market"
	"gridreserve-backend/internal/middleware"
	"gridreserve-backend/internal/observability/metrics"
	"gridreserve-backend/internal/pkg/clock"
	"gridreserve-backend/internal/pkg/constants"
	"gridreserve-backend/internal/settlement"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route
// registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	metrics.Init()

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:       cfg.SessionSecret,
		RedisURL:     cfg.RedisURL,
		IsProduction: cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// Health + metrics (no auth)
	healthService := &health.Service{Rdb: rdb, StartedAt: time.Now()}
	if db != nil {
		healthService.DB = &gormDBPinger{db: db}
	}
	healthHandlers := &health.Handlers{Service: healthService}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth (no auth middleware): POST login, GET me, DELETE logout
	var partyFinder auth.PartyFinder
	if db != nil {
		partyFinder = &auth.GormPartyFinder{DB: db}
	}
	authHandlers := &auth.Handlers{PartyFinder: partyFinder, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	if db != nil {
		sink := audit.Multi{
			&audit.GormRecorder{DB: db},
			&audit.LogRecorder{Logger: log.Logger},
		}
		sysClock := clock.System{}

		batteryService := &batteries.Service{DB: db, SocCeiling: cfg.SocCeiling}

		var policy aggregators.RegistrationPolicy = aggregators.AdminOnly{}
		if cfg.RegistrationPolicy == "self_service" {
			policy = aggregators.SelfService{}
		}
		aggregatorService := &aggregators.Service{DB: db, Batteries: batteryService, Policy: policy}

		marketService := &market.Service{DB: db, Clock: sysClock, Audit: sink}
		engine := &settlement.Engine{DB: db, Batteries: batteryService, Clock: sysClock, Audit: sink}

		// Aggregators
		aggHandlers := &aggregators.Handlers{Service: aggregatorService}
		aggGroup := app.Group("/api/v1/aggregators", middleware.RequireAuth())
		aggGroup.Post("/create", middleware.AuthorizePermission(constants.CreateAggregator), aggHandlers.CreateAggregator)
		aggGroup.Get("/:id", middleware.AuthorizePermission(constants.ViewData), aggHandlers.GetAggregator)
		aggGroup.Post("/register-battery", middleware.AuthorizePermission(constants.RegisterBattery), aggHandlers.RegisterBattery)

		// Batteries (read only; registration goes through aggregators)
		batteryHandlers := &batteries.Handlers{Service: batteryService}
		batteryGroup := app.Group("/api/v1/batteries", middleware.RequireAuth())
		batteryGroup.Get("/", middleware.AuthorizePermission(constants.ViewData), batteryHandlers.ListBatteries)
		batteryGroup.Get("/:owner_id", middleware.AuthorizePermission(constants.ViewData), batteryHandlers.GetBattery)

		// Market sessions + bids
		marketHandlers := &market.Handlers{Service: marketService}
		marketGroup := app.Group("/api/v1/market", middleware.RequireAuth())
		marketGroup.Post("/sessions", middleware.AuthorizePermission(constants.ConfigureMarket), marketHandlers.ConfigureSession)
		marketGroup.Put("/sessions/:session_id", middleware.AuthorizePermission(constants.ConfigureMarket), marketHandlers.ReconfigureSession)
		marketGroup.Get("/sessions/:session_id", middleware.AuthorizePermission(constants.ViewData), marketHandlers.GetSession)
		marketGroup.Post("/sessions/:session_id/bids", middleware.AuthorizePermission(constants.PlaceBid), marketHandlers.PlaceBid)
		marketGroup.Get("/sessions/:session_id/bids", middleware.AuthorizePermission(constants.ViewData), marketHandlers.ListBids)
		marketGroup.Post("/sessions/:session_id/bids/:bid_id/select", middleware.AuthorizePermission(constants.SelectBid), marketHandlers.SelectBid)

		// Settlement
		settlementHandlers := &settlement.Handlers{
			Engine: engine,
			Rail:   &settlement.LogTransferrer{Logger: log.Logger},
		}
		settlementGroup := app.Group("/api/v1/settlement", middleware.RequireAuth())
		settlementGroup.Post("/sessions/:session_id/bids/:bid_id/settle", middleware.AuthorizePermission(constants.SettleBid), settlementHandlers.SettleBid)
		settlementGroup.Get("/balances/:account_id", middleware.AuthorizePermission(constants.ViewData), settlementHandlers.GetBalance)
		settlementGroup.Post("/pay-out", middleware.AuthorizePermission(constants.PayOut), settlementHandlers.PayOut)
		settlementGroup.Get("/sessions/:session_id/statement.xlsx", middleware.AuthorizePermission(constants.ExportStatement), settlementHandlers.ExportStatement)
	}

	return app, db, rdb, nil
}

// Handler returns an http.Handler for environments that need net/http.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/cache"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/database"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/repository"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/service"
)

// Dependencies carries the shared infrastructure the ingestion API is
// built on.
type Dependencies struct {
	SensorRepo  repository.SensorRepositoryInterface
	EventRepo   repository.EventRepositoryInterface
	SensorCache *cache.SensorCache
	Publisher   service.EventPublisher
	DB          *pgxpool.Pool
	Redis       *redis.Client
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Sentinela Ingestion API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check endpoints
	healthHandler := handler.NewHealthHandler(r.readyChecks()...)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	v1 := r.app.Group("/api/v1")

	if r.deps == nil {
		return
	}

	sensorHandler := handler.NewSensorHandler(r.deps.SensorRepo, r.deps.SensorCache, r.logger)
	v1.Post("/sensors", sensorHandler.Register)
	v1.Get("/sensors", sensorHandler.List)
	v1.Get("/sensors/:device_id", sensorHandler.Get)
	v1.Put("/sensors/:device_id", sensorHandler.Update)
	v1.Delete("/sensors/:device_id", sensorHandler.Delete)

	ingestService := service.NewIngestService(
		r.deps.SensorRepo,
		r.deps.EventRepo,
		r.deps.SensorCache,
		r.deps.Publisher,
		r.logger,
	)

	eventHandler := handler.NewEventHandler(ingestService, r.deps.EventRepo, r.logger)
	v1.Post("/events", eventHandler.Create)
	v1.Get("/events", eventHandler.List)
}

func (r *Router) readyChecks() []func(ctx context.Context) error {
	if r.deps == nil {
		return nil
	}
	return []func(ctx context.Context) error{
		func(ctx context.Context) error {
			return database.HealthCheck(ctx, r.deps.DB)
		},
		func(ctx context.Context) error {
			return r.deps.Redis.Ping(ctx).Err()
		},
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}

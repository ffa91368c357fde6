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
)

// AlertingDependencies carries the infrastructure behind the alerting
// service's HTTP surface.
type AlertingDependencies struct {
	AlertRepo repository.AlertRepositoryInterface
	UserRepo  repository.AuthorizedUserRepositoryInterface
	UserCache *cache.AuthorizedUserCache
	DB        *pgxpool.Pool
	Redis     *redis.Client
}

type AlertingRouter struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *AlertingDependencies
}

func NewAlertingRouter(logger *slog.Logger, deps *AlertingDependencies) *AlertingRouter {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Sentinela Alerting API",
	})

	return &AlertingRouter{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *AlertingRouter) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	healthHandler := handler.NewHealthHandler(r.readyChecks()...)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	v1 := r.app.Group("/api/v1")

	if r.deps == nil {
		return
	}

	alertHandler := handler.NewAlertHandler(r.deps.AlertRepo, r.logger)
	v1.Get("/alerts", alertHandler.List)
	v1.Get("/alerts/:id", alertHandler.Get)

	userHandler := handler.NewAuthorizedUserHandler(r.deps.UserRepo, r.deps.UserCache, r.logger)
	v1.Post("/authorized-users", userHandler.Create)
	v1.Get("/authorized-users", userHandler.List)
	v1.Delete("/authorized-users/:user_id", userHandler.Delete)
}

func (r *AlertingRouter) readyChecks() []func(ctx context.Context) error {
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

func (r *AlertingRouter) App() *fiber.App {
	return r.app
}

func (r *AlertingRouter) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *AlertingRouter) Shutdown() error {
	return r.app.Shutdown()
}

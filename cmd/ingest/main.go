package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/api"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/broker"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/cache"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/config"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/database"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/repository"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Sentinela ingestion API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Redis
	redisClient, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	// Repositories and caches
	sensorRepo := repository.NewSensorRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	userRepo := repository.NewAuthorizedUserRepository(pool)
	sensorCache := cache.NewSensorCache(redisClient, cfg.SensorCacheTTL)
	userCache := cache.NewAuthorizedUserCache(redisClient, cfg.AuthorizedUsersTTL)

	// Broker publisher. Startup does not fail if the broker is down;
	// Publish reconnects lazily.
	publisher := broker.NewPublisher(cfg.AMQPURL, cfg.ExchangeName, cfg.RoutingKey, logger)
	if err := publisher.Connect(); err != nil {
		logger.Warn("broker unavailable at startup, will reconnect on publish", "error", err)
	}
	defer publisher.Close()

	// Seed default sensors and users on fresh deployments
	if cfg.EnableSeeding {
		seeder := seed.NewSeeder(sensorRepo, userRepo, sensorCache, userCache, logger)
		if err := seeder.Run(ctx); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
	}

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		SensorRepo:  sensorRepo,
		EventRepo:   eventRepo,
		SensorCache: sensorCache,
		Publisher:   publisher,
		DB:          pool,
		Redis:       redisClient,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}

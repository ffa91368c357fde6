package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/alerting"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/api"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/broker"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/cache"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/config"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/database"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/repository"
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

	logger.Info("starting Sentinela alerting service",
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

	// Repositories and cache
	alertRepo := repository.NewAlertRepository(pool)
	userRepo := repository.NewAuthorizedUserRepository(pool)
	userCache := cache.NewAuthorizedUserCache(redisClient, cfg.AuthorizedUsersTTL)

	// Warm the authorization cache from the directory so the first
	// access checks do not all fall through to Postgres.
	if ids, err := userRepo.ListUserIDs(ctx); err != nil {
		logger.Warn("failed to warm authorized user cache", "error", err)
	} else if err := userCache.Replace(ctx, ids); err != nil {
		logger.Warn("failed to warm authorized user cache", "error", err)
	} else {
		logger.Info("authorized user cache warmed", slog.Int("users", len(ids)))
	}

	// Decision engine
	engine := alerting.NewEngine(userRepo, userCache, alerting.Config{
		SpeedThresholdKmh: cfg.SpeedThresholdKmh,
		RestrictedZones:   cfg.RestrictedZones,
		AfterHoursStart:   cfg.AfterHoursStart,
		AfterHoursEnd:     cfg.AfterHoursEnd,
	}, logger)

	// Consumer. Evaluation never fails a message; only an alert store
	// write failure leaves the message on the queue for redelivery.
	consumer := broker.NewConsumer(cfg.AMQPURL, cfg.ExchangeName, cfg.QueueName, cfg.RoutingKey, logger)
	if err := consumer.Connect(); err != nil {
		return fmt.Errorf("failed to connect consumer: %w", err)
	}
	defer consumer.Close()

	handler := func(ctx context.Context, event domain.Event) error {
		alert := engine.Evaluate(ctx, event)
		if alert == nil {
			return nil
		}
		if err := alertRepo.Create(ctx, alert); err != nil {
			return fmt.Errorf("store alert for event %d: %w", event.ID, err)
		}
		logger.Info("alert raised",
			"alert_id", alert.ID,
			"alert_type", alert.Type,
			"event_id", event.ID,
			"device_id", alert.DeviceID,
		)
		return nil
	}

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Run(ctx, handler)
	}()

	// Setup router
	router := api.NewAlertingRouter(logger, &api.AlertingDependencies{
		AlertRepo: alertRepo,
		UserRepo:  userRepo,
		UserCache: userCache,
		DB:        pool,
		Redis:     redisClient,
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
	case err := <-consumerErr:
		if err != nil {
			return fmt.Errorf("consumer error: %w", err)
		}
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

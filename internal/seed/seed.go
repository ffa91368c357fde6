// Package seed populates a fresh deployment with a starter set of
// sensors and authorized users so the pipeline is exercisable without
// manual registration.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/cache"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/repository"
)

var defaultSensors = []domain.Sensor{
	{DeviceID: "AA:BB:CC:DD:EE:FF", DeviceType: domain.DeviceAccessController},
	{DeviceID: "11:22:33:44:55:66", DeviceType: domain.DeviceRadar},
	{DeviceID: "77:88:99:AA:BB:CC", DeviceType: domain.DeviceSecurityCamera},
}

var defaultUsers = []domain.AuthorizedUser{
	{UserID: "user001", Description: strPtr("Facilities staff")},
	{UserID: "user002", Description: strPtr("Security team")},
	{UserID: "admin001", Description: strPtr("Site administrator")},
}

func strPtr(s string) *string { return &s }

type Seeder struct {
	sensors     repository.SensorRepositoryInterface
	users       repository.AuthorizedUserRepositoryInterface
	sensorCache *cache.SensorCache
	userCache   *cache.AuthorizedUserCache
	logger      *slog.Logger
}

func NewSeeder(
	sensors repository.SensorRepositoryInterface,
	users repository.AuthorizedUserRepositoryInterface,
	sensorCache *cache.SensorCache,
	userCache *cache.AuthorizedUserCache,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		sensors:     sensors,
		users:       users,
		sensorCache: sensorCache,
		userCache:   userCache,
		logger:      logger,
	}
}

// Run seeds sensors and authorized users. Each table is seeded only
// when empty, so redeploys never duplicate or resurrect deleted rows.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedSensors(ctx); err != nil {
		return fmt.Errorf("seed sensors: %w", err)
	}
	if err := s.seedUsers(ctx); err != nil {
		return fmt.Errorf("seed authorized users: %w", err)
	}
	return nil
}

func (s *Seeder) seedSensors(ctx context.Context) error {
	existing, err := s.sensors.List(ctx, "", 0, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Debug("sensors already present, skipping seed")
		return nil
	}

	for i := range defaultSensors {
		sensor := defaultSensors[i]
		if err := s.sensors.Create(ctx, &sensor); err != nil {
			return err
		}
		if err := s.sensorCache.Set(ctx, &sensor); err != nil {
			s.logger.Warn("failed to cache seeded sensor", "device_id", sensor.DeviceID, "error", err)
		}
		s.logger.Info("seeded sensor", "device_id", sensor.DeviceID, "device_type", sensor.DeviceType)
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	existing, err := s.users.List(ctx, 0, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Debug("authorized users already present, skipping seed")
		return nil
	}

	ids := make([]string, 0, len(defaultUsers))
	for i := range defaultUsers {
		user := defaultUsers[i]
		if err := s.users.Create(ctx, &user); err != nil {
			return err
		}
		ids = append(ids, user.UserID)
		s.logger.Info("seeded authorized user", "user_id", user.UserID)
	}

	if err := s.userCache.Replace(ctx, ids); err != nil {
		s.logger.Warn("failed to warm authorized user cache", "error", err)
	}
	return nil
}

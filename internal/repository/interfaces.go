package repository

import (
	"context"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

// SensorRepositoryInterface defines operations for the sensor registry
type SensorRepositoryInterface interface {
	Create(ctx context.Context, sensor *domain.Sensor) error
	GetByDeviceID(ctx context.Context, deviceID string) (*domain.Sensor, error)
	List(ctx context.Context, deviceType domain.DeviceType, skip, limit int) ([]domain.Sensor, error)
	UpdateByDeviceID(ctx context.Context, deviceID string, deviceType domain.DeviceType) (*domain.Sensor, error)
	DeleteByDeviceID(ctx context.Context, deviceID string) error
}

// EventRepositoryInterface defines operations for the append-only event store
type EventRepositoryInterface interface {
	Create(ctx context.Context, event *domain.Event) error
	List(ctx context.Context, filter domain.EventFilter, skip, limit int) ([]domain.Event, error)
}

// AlertRepositoryInterface defines operations for the append-only alert store
type AlertRepositoryInterface interface {
	Create(ctx context.Context, alert *domain.Alert) error
	List(ctx context.Context, filter domain.AlertFilter, skip, limit int) ([]domain.Alert, error)
	GetByID(ctx context.Context, id int64) (*domain.Alert, error)
}

// AuthorizedUserRepositoryInterface defines operations for the authorized-user directory
type AuthorizedUserRepositoryInterface interface {
	Create(ctx context.Context, user *domain.AuthorizedUser) error
	GetByUserID(ctx context.Context, userID string) (*domain.AuthorizedUser, error)
	IsAuthorized(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, skip, limit int) ([]domain.AuthorizedUser, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, userID string) error
}

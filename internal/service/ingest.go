// Package service wires the ingestion pipeline: structural validation,
// registry cross-check, persistence, and the best-effort bus publish.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/event"
)

// SensorLookup resolves a device id against the registry store.
type SensorLookup interface {
	GetByDeviceID(ctx context.Context, deviceID string) (*domain.Sensor, error)
}

// EventWriter appends accepted events to the store.
type EventWriter interface {
	Create(ctx context.Context, event *domain.Event) error
}

// SensorCache is the lazy per-device cache in front of the registry.
type SensorCache interface {
	Get(ctx context.Context, deviceID string) (*domain.Sensor, error)
	Set(ctx context.Context, sensor *domain.Sensor) error
}

// EventPublisher delivers stored events to the bus.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.Event) error
}

type IngestService struct {
	sensors     SensorLookup
	events      EventWriter
	sensorCache SensorCache
	publisher   EventPublisher
	logger      *slog.Logger
}

func NewIngestService(sensors SensorLookup, events EventWriter, sensorCache SensorCache, publisher EventPublisher, logger *slog.Logger) *IngestService {
	return &IngestService{
		sensors:     sensors,
		events:      events,
		sensorCache: sensorCache,
		publisher:   publisher,
		logger:      logger,
	}
}

// Ingest validates a raw payload, cross-checks it against the registered
// sensor, stores it, and publishes it to the bus. The store write is
// never rolled back on publish failure: the event stays queryable and
// the gap in alerting coverage is logged.
func (s *IngestService) Ingest(ctx context.Context, raw []byte) (*domain.Event, error) {
	incoming, err := event.Parse(raw)
	if err != nil {
		return nil, err
	}

	sensor, err := s.resolveSensor(ctx, incoming.DeviceID)
	if err != nil {
		return nil, err
	}

	if err := event.CheckDeviceType(sensor.DeviceType, incoming.Type()); err != nil {
		return nil, err
	}

	stored := &domain.Event{
		SensorID:  sensor.ID,
		DeviceID:  incoming.DeviceID,
		Timestamp: incoming.Timestamp,
		Type:      incoming.Type(),
		Data:      incoming.Payload.Fields(),
	}

	if err := s.events.Create(ctx, stored); err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	if err := s.publisher.Publish(ctx, stored); err != nil {
		s.logger.Error("event stored but not published, alerting pipeline will not see it",
			"event_id", stored.ID, "error", err)
	}

	return stored, nil
}

// resolveSensor checks the cache first and falls back to the registry
// store, populating the cache on a store hit. Unregistered devices are a
// hard rejection.
func (s *IngestService) resolveSensor(ctx context.Context, deviceID string) (*domain.Sensor, error) {
	cached, err := s.sensorCache.Get(ctx, deviceID)
	if err != nil {
		s.logger.Warn("sensor cache unavailable", "device_id", deviceID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	sensor, err := s.sensors.GetByDeviceID(ctx, deviceID)
	if errors.Is(err, domain.ErrSensorNotFound) {
		return nil, domain.ErrDeviceNotRegistered.WithMessage(fmt.Sprintf(
			"Device ID '%s' is not registered. Payloads from unregistered sensors are restricted.", deviceID))
	}
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	if err := s.sensorCache.Set(ctx, sensor); err != nil {
		s.logger.Warn("failed to cache sensor", "device_id", deviceID, "error", err)
	}

	return sensor, nil
}

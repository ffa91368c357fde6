package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/repository"
)

// EventIngester accepts a raw JSON payload and returns the stored event.
type EventIngester interface {
	Ingest(ctx context.Context, raw []byte) (*domain.Event, error)
}

// EventLister queries the event store.
type EventLister interface {
	List(ctx context.Context, filter domain.EventFilter, skip, limit int) ([]domain.Event, error)
}

type EventHandler struct {
	ingester EventIngester
	events   EventLister
	logger   *slog.Logger
}

func NewEventHandler(ingester EventIngester, events EventLister, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		ingester: ingester,
		events:   events,
		logger:   logger,
	}
}

// Create POST /api/v1/events - ingest a sensor event
func (h *EventHandler) Create(c *fiber.Ctx) error {
	stored, err := h.ingester.Ingest(c.Context(), c.Body())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(stored)
}

// List GET /api/v1/events - query stored events
func (h *EventHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := c.QueryInt("limit", repository.DefaultLimit)

	filter := domain.EventFilter{
		EventType:  domain.EventType(c.Query("event_type")),
		DeviceType: domain.DeviceType(c.Query("device_type")),
	}

	var err error
	if filter.StartTime, err = queryTime(c, "start_time"); err != nil {
		return err
	}
	if filter.EndTime, err = queryTime(c, "end_time"); err != nil {
		return err
	}

	events, err := h.events.List(c.Context(), filter, skip, limit)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	if events == nil {
		events = []domain.Event{}
	}
	return c.JSON(events)
}

func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.ErrValidationFailed.WithMessage(
			name + " must be an ISO-8601 datetime")
	}
	return &ts, nil
}

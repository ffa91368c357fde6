package handler

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/repository"
)

type AlertHandler struct {
	alerts repository.AlertRepositoryInterface
	logger *slog.Logger
}

func NewAlertHandler(alerts repository.AlertRepositoryInterface, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logger}
}

// List GET /api/v1/alerts
func (h *AlertHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := c.QueryInt("limit", repository.DefaultLimit)

	filter := domain.AlertFilter{
		DeviceID: c.Query("device_id"),
	}

	if raw := c.Query("alert_type"); raw != "" {
		alertType := domain.AlertType(raw)
		if !alertType.Valid() {
			return domain.ErrValidationFailed.WithMessage(
				"alert_type must be one of: unauthorized_access, speed_violation, intrusion_detection")
		}
		filter.AlertType = alertType
	}

	var err error
	if filter.StartTime, err = queryTime(c, "start_time"); err != nil {
		return err
	}
	if filter.EndTime, err = queryTime(c, "end_time"); err != nil {
		return err
	}

	alerts, err := h.alerts.List(c.Context(), filter, skip, limit)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return c.JSON(alerts)
}

// Get GET /api/v1/alerts/:id
func (h *AlertHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return domain.ErrValidationFailed.WithMessage("alert id must be an integer")
	}

	alert, err := h.alerts.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(alert)
}

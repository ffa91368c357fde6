package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/repository"
)

// SensorCacheInvalidator drops a cached sensor entry after registry mutations.
type SensorCacheInvalidator interface {
	Set(ctx context.Context, sensor *domain.Sensor) error
	Invalidate(ctx context.Context, deviceID string) error
}

type SensorHandler struct {
	sensors repository.SensorRepositoryInterface
	cache   SensorCacheInvalidator
	logger  *slog.Logger
}

func NewSensorHandler(sensors repository.SensorRepositoryInterface, cache SensorCacheInvalidator, logger *slog.Logger) *SensorHandler {
	return &SensorHandler{
		sensors: sensors,
		cache:   cache,
		logger:  logger,
	}
}

type sensorRequest struct {
	DeviceID   string `json:"device_id"`
	DeviceType string `json:"device_type"`
}

// Register POST /api/v1/sensors - register a new sensor
func (h *SensorHandler) Register(c *fiber.Ctx) error {
	var req sensorRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	mac, ok := domain.CanonicalMAC(req.DeviceID)
	if !ok {
		return domain.ErrInvalidDeviceID
	}

	deviceType := domain.DeviceType(req.DeviceType)
	if !deviceType.Valid() {
		return domain.ErrValidationFailed.WithMessage(
			"device_type must be one of: access_controller, radar, security_camera")
	}

	sensor := &domain.Sensor{DeviceID: mac, DeviceType: deviceType}
	if err := h.sensors.Create(c.Context(), sensor); err != nil {
		return err
	}

	if err := h.cache.Set(c.Context(), sensor); err != nil {
		h.logger.Warn("failed to cache sensor", "device_id", mac, "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(sensor)
}

// List GET /api/v1/sensors
func (h *SensorHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := c.QueryInt("limit", repository.DefaultLimit)

	sensors, err := h.sensors.List(c.Context(), domain.DeviceType(c.Query("device_type")), skip, limit)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	if sensors == nil {
		sensors = []domain.Sensor{}
	}
	return c.JSON(sensors)
}

// Get GET /api/v1/sensors/:device_id
func (h *SensorHandler) Get(c *fiber.Ctx) error {
	mac, ok := domain.CanonicalMAC(c.Params("device_id"))
	if !ok {
		return domain.ErrInvalidDeviceID
	}

	sensor, err := h.sensors.GetByDeviceID(c.Context(), mac)
	if err != nil {
		return err
	}

	return c.JSON(sensor)
}

// Update PUT /api/v1/sensors/:device_id - change the device type
func (h *SensorHandler) Update(c *fiber.Ctx) error {
	mac, ok := domain.CanonicalMAC(c.Params("device_id"))
	if !ok {
		return domain.ErrInvalidDeviceID
	}

	var req struct {
		DeviceType string `json:"device_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	deviceType := domain.DeviceType(req.DeviceType)
	if !deviceType.Valid() {
		return domain.ErrValidationFailed.WithMessage(
			"device_type must be one of: access_controller, radar, security_camera")
	}

	sensor, err := h.sensors.UpdateByDeviceID(c.Context(), mac, deviceType)
	if err != nil {
		return err
	}

	// Stale cached entries would let the old type pass the cross-check.
	if err := h.cache.Invalidate(c.Context(), mac); err != nil {
		h.logger.Warn("failed to invalidate sensor cache", "device_id", mac, "error", err)
	}

	return c.JSON(sensor)
}

// Delete DELETE /api/v1/sensors/:device_id
func (h *SensorHandler) Delete(c *fiber.Ctx) error {
	mac, ok := domain.CanonicalMAC(c.Params("device_id"))
	if !ok {
		return domain.ErrInvalidDeviceID
	}

	if err := h.sensors.DeleteByDeviceID(c.Context(), mac); err != nil {
		return err
	}

	if err := h.cache.Invalidate(c.Context(), mac); err != nil {
		h.logger.Warn("failed to invalidate sensor cache", "device_id", mac, "error", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

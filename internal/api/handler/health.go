package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	readyChecks []func(ctx context.Context) error
}

// NewHealthHandler creates a health handler; readyChecks gate /ready.
func NewHealthHandler(readyChecks ...func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{readyChecks: readyChecks}
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	for _, check := range h.readyChecks {
		if err := check(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status: "unavailable",
			})
		}
	}
	return c.JSON(HealthResponse{Status: "ready"})
}

package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/repository"
)

// UserCacheWriter keeps the cache mirror in step with directory writes.
type UserCacheWriter interface {
	Add(ctx context.Context, userID string) error
	Replace(ctx context.Context, userIDs []string) error
}

type AuthorizedUserHandler struct {
	users  repository.AuthorizedUserRepositoryInterface
	cache  UserCacheWriter
	logger *slog.Logger
}

func NewAuthorizedUserHandler(users repository.AuthorizedUserRepositoryInterface, cache UserCacheWriter, logger *slog.Logger) *AuthorizedUserHandler {
	return &AuthorizedUserHandler{
		users:  users,
		cache:  cache,
		logger: logger,
	}
}

type authorizedUserRequest struct {
	UserID      string  `json:"user_id"`
	Description *string `json:"description,omitempty"`
}

// Create POST /api/v1/authorized-users
func (h *AuthorizedUserHandler) Create(c *fiber.Ctx) error {
	var req authorizedUserRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if req.UserID == "" {
		return domain.ErrValidationFailed.WithMessage("user_id is required")
	}

	user := &domain.AuthorizedUser{UserID: req.UserID, Description: req.Description}
	if err := h.users.Create(c.Context(), user); err != nil {
		return err
	}

	if err := h.cache.Add(c.Context(), user.UserID); err != nil {
		h.logger.Warn("failed to cache authorized user", "user_id", user.UserID, "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// List GET /api/v1/authorized-users
func (h *AuthorizedUserHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := c.QueryInt("limit", repository.DefaultLimit)

	users, err := h.users.List(c.Context(), skip, limit)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	if users == nil {
		users = []domain.AuthorizedUser{}
	}
	return c.JSON(users)
}

// Delete DELETE /api/v1/authorized-users/:user_id - revoke a user. The
// cache snapshot is rebuilt from the store so the revocation is observed
// on the next lookup rather than at TTL expiry.
func (h *AuthorizedUserHandler) Delete(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	if err := h.users.Delete(c.Context(), userID); err != nil {
		return err
	}

	ids, err := h.users.ListUserIDs(c.Context())
	if err != nil {
		h.logger.Error("failed to rebuild authorized user cache", "error", err)
	} else if err := h.cache.Replace(c.Context(), ids); err != nil {
		h.logger.Error("failed to replace authorized user cache", "error", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

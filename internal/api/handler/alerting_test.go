package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

// MockAlertRepo is a mock implementation of AlertRepositoryInterface
type MockAlertRepo struct {
	mock.Mock
}

func (m *MockAlertRepo) Create(ctx context.Context, alert *domain.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepo) List(ctx context.Context, filter domain.AlertFilter, skip, limit int) ([]domain.Alert, error) {
	args := m.Called(ctx, filter, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Alert), args.Error(1)
}

func (m *MockAlertRepo) GetByID(ctx context.Context, id int64) (*domain.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Alert), args.Error(1)
}

// MockUserRepo is a mock implementation of AuthorizedUserRepositoryInterface
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.AuthorizedUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByUserID(ctx context.Context, userID string) (*domain.AuthorizedUser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthorizedUser), args.Error(1)
}

func (m *MockUserRepo) IsAuthorized(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context, skip, limit int) ([]domain.AuthorizedUser, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuthorizedUser), args.Error(1)
}

func (m *MockUserRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepo) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockUserCache is a mock implementation of UserCacheWriter
type MockUserCache struct {
	mock.Mock
}

func (m *MockUserCache) Add(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserCache) Replace(ctx context.Context, userIDs []string) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

func TestAlertHandlerList(t *testing.T) {
	t.Run("invalid alert_type rejected", func(t *testing.T) {
		app := newTestApp()
		h := NewAlertHandler(&MockAlertRepo{}, testLogger())
		app.Get("/alerts", h.List)

		resp, err := app.Test(httptest.NewRequest("GET", "/alerts?alert_type=fire", nil))
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, resp.Body))
	})

	t.Run("filters forwarded", func(t *testing.T) {
		repo := &MockAlertRepo{}
		repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.AlertFilter) bool {
			return f.AlertType == domain.AlertSpeedViolation && f.DeviceID == "11:22:33:44:55:66"
		}), 0, 100).Return([]domain.Alert{{ID: 1, Type: domain.AlertSpeedViolation}}, nil)

		app := newTestApp()
		h := NewAlertHandler(repo, testLogger())
		app.Get("/alerts", h.List)

		resp, err := app.Test(httptest.NewRequest("GET",
			"/alerts?alert_type=speed_violation&device_id=11:22:33:44:55:66", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var alerts []domain.Alert
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&alerts))
		require.Len(t, alerts, 1)
		assert.Equal(t, domain.AlertSpeedViolation, alerts[0].Type)
		repo.AssertExpectations(t)
	})
}

func TestAlertHandlerGet(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo := &MockAlertRepo{}
		repo.On("GetByID", mock.Anything, int64(999)).Return(nil, domain.ErrAlertNotFound)

		app := newTestApp()
		h := NewAlertHandler(repo, testLogger())
		app.Get("/alerts/:id", h.Get)

		resp, err := app.Test(httptest.NewRequest("GET", "/alerts/999", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("non integer id rejected", func(t *testing.T) {
		app := newTestApp()
		h := NewAlertHandler(&MockAlertRepo{}, testLogger())
		app.Get("/alerts/:id", h.Get)

		resp, err := app.Test(httptest.NewRequest("GET", "/alerts/abc", nil))
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
	})
}

func TestAuthorizedUserHandlerCreate(t *testing.T) {
	t.Run("creates and caches", func(t *testing.T) {
		repo := &MockUserRepo{}
		cache := &MockUserCache{}
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.AuthorizedUser) bool {
			return u.UserID == "user123"
		})).Return(nil)
		cache.On("Add", mock.Anything, "user123").Return(nil)

		app := newTestApp()
		h := NewAuthorizedUserHandler(repo, cache, testLogger())
		app.Post("/authorized-users", h.Create)

		body := `{"user_id": "user123", "description": "Facilities staff"}`
		req := httptest.NewRequest("POST", "/authorized-users", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("missing user_id rejected", func(t *testing.T) {
		app := newTestApp()
		h := NewAuthorizedUserHandler(&MockUserRepo{}, &MockUserCache{}, testLogger())
		app.Post("/authorized-users", h.Create)

		req := httptest.NewRequest("POST", "/authorized-users", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
	})

	t.Run("duplicate conflicts", func(t *testing.T) {
		repo := &MockUserRepo{}
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUserExists)

		app := newTestApp()
		h := NewAuthorizedUserHandler(repo, &MockUserCache{}, testLogger())
		app.Post("/authorized-users", h.Create)

		req := httptest.NewRequest("POST", "/authorized-users", bytes.NewBufferString(`{"user_id": "user123"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}

func TestAuthorizedUserHandlerDelete(t *testing.T) {
	t.Run("revokes and rebuilds cache", func(t *testing.T) {
		repo := &MockUserRepo{}
		cache := &MockUserCache{}
		repo.On("Delete", mock.Anything, "user123").Return(nil)
		repo.On("ListUserIDs", mock.Anything).Return([]string{"user002"}, nil)
		cache.On("Replace", mock.Anything, []string{"user002"}).Return(nil)

		app := newTestApp()
		h := NewAuthorizedUserHandler(repo, cache, testLogger())
		app.Delete("/authorized-users/:user_id", h.Delete)

		resp, err := app.Test(httptest.NewRequest("DELETE", "/authorized-users/user123", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("unknown user not found", func(t *testing.T) {
		repo := &MockUserRepo{}
		repo.On("Delete", mock.Anything, "ghost").Return(domain.ErrUserNotFound)

		app := newTestApp()
		h := NewAuthorizedUserHandler(repo, &MockUserCache{}, testLogger())
		app.Delete("/authorized-users/:user_id", h.Delete)

		resp, err := app.Test(httptest.NewRequest("DELETE", "/authorized-users/ghost", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("health always ok", func(t *testing.T) {
		app := newTestApp()
		h := NewHealthHandler()
		app.Get("/health", h.Health)

		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("ready passes when checks pass", func(t *testing.T) {
		app := newTestApp()
		h := NewHealthHandler(func(context.Context) error { return nil })
		app.Get("/ready", h.Ready)

		resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("ready fails when a dependency is down", func(t *testing.T) {
		app := newTestApp()
		h := NewHealthHandler(
			func(context.Context) error { return nil },
			func(context.Context) error { return errors.New("redis down") },
		)
		app.Get("/ready", h.Ready)

		resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}

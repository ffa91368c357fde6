package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

// MockSensorRepo is a mock implementation of SensorRepositoryInterface
type MockSensorRepo struct {
	mock.Mock
}

func (m *MockSensorRepo) Create(ctx context.Context, sensor *domain.Sensor) error {
	args := m.Called(ctx, sensor)
	return args.Error(0)
}

func (m *MockSensorRepo) GetByDeviceID(ctx context.Context, deviceID string) (*domain.Sensor, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sensor), args.Error(1)
}

func (m *MockSensorRepo) List(ctx context.Context, deviceType domain.DeviceType, skip, limit int) ([]domain.Sensor, error) {
	args := m.Called(ctx, deviceType, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sensor), args.Error(1)
}

func (m *MockSensorRepo) UpdateByDeviceID(ctx context.Context, deviceID string, deviceType domain.DeviceType) (*domain.Sensor, error) {
	args := m.Called(ctx, deviceID, deviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sensor), args.Error(1)
}

func (m *MockSensorRepo) DeleteByDeviceID(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

// MockSensorCache is a mock implementation of SensorCacheInvalidator
type MockSensorCache struct {
	mock.Mock
}

func (m *MockSensorCache) Set(ctx context.Context, sensor *domain.Sensor) error {
	args := m.Called(ctx, sensor)
	return args.Error(0)
}

func (m *MockSensorCache) Invalidate(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

// MockIngester is a mock implementation of EventIngester
type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Ingest(ctx context.Context, raw []byte) (*domain.Event, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

// MockEventLister is a mock implementation of EventLister
type MockEventLister struct {
	mock.Mock
}

func (m *MockEventLister) List(ctx context.Context, filter domain.EventFilter, skip, limit int) ([]domain.Event, error) {
	args := m.Called(ctx, filter, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
}

func errorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&payload))
	return payload.Error.Code
}

func TestSensorHandlerRegister(t *testing.T) {
	t.Run("registers and caches sensor", func(t *testing.T) {
		repo := &MockSensorRepo{}
		cache := &MockSensorCache{}
		repo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Sensor) bool {
			return s.DeviceID == "AA:BB:CC:DD:EE:FF" && s.DeviceType == domain.DeviceAccessController
		})).Return(nil)
		cache.On("Set", mock.Anything, mock.Anything).Return(nil)

		app := newTestApp()
		h := NewSensorHandler(repo, cache, testLogger())
		app.Post("/sensors", h.Register)

		body := `{"device_id": "aa-bb-cc-dd-ee-ff", "device_type": "access_controller"}`
		req := httptest.NewRequest("POST", "/sensors", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("rejects malformed device id", func(t *testing.T) {
		app := newTestApp()
		h := NewSensorHandler(&MockSensorRepo{}, &MockSensorCache{}, testLogger())
		app.Post("/sensors", h.Register)

		body := `{"device_id": "not-a-mac", "device_type": "radar"}`
		req := httptest.NewRequest("POST", "/sensors", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "INVALID_DEVICE_ID", errorCode(t, resp.Body))
	})

	t.Run("rejects unknown device type", func(t *testing.T) {
		app := newTestApp()
		h := NewSensorHandler(&MockSensorRepo{}, &MockSensorCache{}, testLogger())
		app.Post("/sensors", h.Register)

		body := `{"device_id": "AA:BB:CC:DD:EE:FF", "device_type": "thermostat"}`
		req := httptest.NewRequest("POST", "/sensors", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, resp.Body))
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		repo := &MockSensorRepo{}
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrSensorExists)

		app := newTestApp()
		h := NewSensorHandler(repo, &MockSensorCache{}, testLogger())
		app.Post("/sensors", h.Register)

		body := `{"device_id": "AA:BB:CC:DD:EE:FF", "device_type": "radar"}`
		req := httptest.NewRequest("POST", "/sensors", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, "SENSOR_ALREADY_EXISTS", errorCode(t, resp.Body))
	})
}

func TestSensorHandlerGet(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo := &MockSensorRepo{}
		repo.On("GetByDeviceID", mock.Anything, "DE:AD:BE:EF:00:00").Return(nil, domain.ErrSensorNotFound)

		app := newTestApp()
		h := NewSensorHandler(repo, &MockSensorCache{}, testLogger())
		app.Get("/sensors/:device_id", h.Get)

		resp, err := app.Test(httptest.NewRequest("GET", "/sensors/DE:AD:BE:EF:00:00", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestSensorHandlerDelete(t *testing.T) {
	repo := &MockSensorRepo{}
	cache := &MockSensorCache{}
	repo.On("DeleteByDeviceID", mock.Anything, "AA:BB:CC:DD:EE:FF").Return(nil)
	cache.On("Invalidate", mock.Anything, "AA:BB:CC:DD:EE:FF").Return(nil)

	app := newTestApp()
	h := NewSensorHandler(repo, cache, testLogger())
	app.Delete("/sensors/:device_id", h.Delete)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/sensors/aa-bb-cc-dd-ee-ff", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	cache.AssertExpectations(t)
}

func TestEventHandlerCreate(t *testing.T) {
	t.Run("accepted event returns 201", func(t *testing.T) {
		ingester := &MockIngester{}
		ingester.On("Ingest", mock.Anything, mock.Anything).Return(&domain.Event{
			ID:       1,
			DeviceID: "AA:BB:CC:DD:EE:FF",
			Type:     domain.EventAccessAttempt,
		}, nil)

		app := newTestApp()
		h := NewEventHandler(ingester, &MockEventLister{}, testLogger())
		app.Post("/events", h.Create)

		req := httptest.NewRequest("POST", "/events", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var stored domain.Event
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&stored))
		assert.Equal(t, int64(1), stored.ID)
	})

	t.Run("device event mismatch returns 400", func(t *testing.T) {
		ingester := &MockIngester{}
		ingester.On("Ingest", mock.Anything, mock.Anything).Return(nil, domain.ErrDeviceEventMismatch)

		app := newTestApp()
		h := NewEventHandler(ingester, &MockEventLister{}, testLogger())
		app.Post("/events", h.Create)

		req := httptest.NewRequest("POST", "/events", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "DEVICE_EVENT_MISMATCH", errorCode(t, resp.Body))
	})

	t.Run("unregistered device returns 403", func(t *testing.T) {
		ingester := &MockIngester{}
		ingester.On("Ingest", mock.Anything, mock.Anything).Return(nil, domain.ErrDeviceNotRegistered)

		app := newTestApp()
		h := NewEventHandler(ingester, &MockEventLister{}, testLogger())
		app.Post("/events", h.Create)

		req := httptest.NewRequest("POST", "/events", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestEventHandlerList(t *testing.T) {
	t.Run("empty result is an empty array", func(t *testing.T) {
		lister := &MockEventLister{}
		lister.On("List", mock.Anything, mock.Anything, 0, 100).Return([]domain.Event(nil), nil)

		app := newTestApp()
		h := NewEventHandler(&MockIngester{}, lister, testLogger())
		app.Get("/events", h.List)

		resp, err := app.Test(httptest.NewRequest("GET", "/events", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(body))
	})

	t.Run("invalid start_time rejected", func(t *testing.T) {
		app := newTestApp()
		h := NewEventHandler(&MockIngester{}, &MockEventLister{}, testLogger())
		app.Get("/events", h.List)

		resp, err := app.Test(httptest.NewRequest("GET", "/events?start_time=yesterday", nil))
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, resp.Body))
	})

	t.Run("filters forwarded", func(t *testing.T) {
		lister := &MockEventLister{}
		lister.On("List", mock.Anything, mock.MatchedBy(func(f domain.EventFilter) bool {
			return f.EventType == domain.EventSpeedViolation && f.DeviceType == domain.DeviceRadar
		}), 10, 50).Return([]domain.Event{}, nil)

		app := newTestApp()
		h := NewEventHandler(&MockIngester{}, lister, testLogger())
		app.Get("/events", h.List)

		resp, err := app.Test(httptest.NewRequest("GET",
			"/events?event_type=speed_violation&device_type=radar&skip=10&limit=50", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		lister.AssertExpectations(t)
	})
}

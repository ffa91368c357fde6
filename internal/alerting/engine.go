// Package alerting holds the decision engine: a stateless evaluator
// mapping one consumed event to at most one alert.
package alerting

import (
	"context"
	"log/slog"
	"strings"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

// UserDirectory is the durable source of truth for authorized users.
type UserDirectory interface {
	IsAuthorized(ctx context.Context, userID string) (bool, error)
}

// UserCache is the directory's cache mirror. Add is the read-repair path.
type UserCache interface {
	IsAuthorized(ctx context.Context, userID string) (bool, error)
	Add(ctx context.Context, userID string) error
}

type Config struct {
	// SpeedThresholdKmh is exclusive: only speeds strictly above it alert.
	SpeedThresholdKmh int
	// RestrictedZones are matched as case-sensitive substrings of the
	// event's zone field.
	RestrictedZones []string
	// After-hours window wraps midnight: hour >= AfterHoursStart or
	// hour < AfterHoursEnd.
	AfterHoursStart int
	AfterHoursEnd   int
}

func DefaultConfig() Config {
	return Config{
		SpeedThresholdKmh: 90,
		RestrictedZones:   []string{"Restricted Area", "Secure Zone", "Private Area", "Classified Zone"},
		AfterHoursStart:   18,
		AfterHoursEnd:     6,
	}
}

type Engine struct {
	directory UserDirectory
	cache     UserCache
	cfg       Config
	logger    *slog.Logger
}

func NewEngine(directory UserDirectory, cache UserCache, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		directory: directory,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
	}
}

// Evaluate decides whether event warrants an alert. It never fails the
// consumer loop: lookup errors and panics are logged and produce no
// alert. Events with payloads a rule cannot read are skipped, not
// errors.
func (e *Engine) Evaluate(ctx context.Context, event domain.Event) (alert *domain.Alert) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic during evaluation", "event_id", event.ID, "panic", r)
			alert = nil
		}
	}()

	switch event.Type {
	case domain.EventAccessAttempt:
		return e.evaluateAccessAttempt(ctx, event)
	case domain.EventSpeedViolation:
		return e.evaluateSpeedViolation(event)
	case domain.EventMotionDetected:
		return e.evaluateMotionDetected(event)
	default:
		e.logger.Warn("unknown event type, skipping", "event_id", event.ID, "event_type", event.Type)
		return nil
	}
}

func (e *Engine) evaluateAccessAttempt(ctx context.Context, event domain.Event) *domain.Alert {
	userID, ok := stringValue(event.Data, "user_id")
	if !ok {
		e.logger.Warn("access event missing user_id", "event_id", event.ID)
		return nil
	}

	cached, err := e.cache.IsAuthorized(ctx, userID)
	if err != nil {
		e.logger.Warn("authorization cache unavailable, falling back to directory",
			"event_id", event.ID, "error", err)
	}
	if cached {
		return nil
	}

	authorized, err := e.directory.IsAuthorized(ctx, userID)
	if err != nil {
		e.logger.Error("authorization lookup failed", "event_id", event.ID, "error", err)
		return nil
	}

	if authorized {
		// Read-repair: the next lookup for this user hits the cache.
		if err := e.cache.Add(ctx, userID); err != nil {
			e.logger.Warn("cache read-repair failed", "user_id", userID, "error", err)
		}
		return nil
	}

	return e.newAlert(event, domain.AlertUnauthorizedAccess, nil)
}

func (e *Engine) evaluateSpeedViolation(event domain.Event) *domain.Alert {
	speed, ok := numericValue(event.Data, "speed_kmh")
	if !ok {
		e.logger.Warn("speed event missing numeric speed_kmh", "event_id", event.ID)
		return nil
	}

	if speed <= float64(e.cfg.SpeedThresholdKmh) {
		return nil
	}

	return e.newAlert(event, domain.AlertSpeedViolation, nil)
}

func (e *Engine) evaluateMotionDetected(event domain.Event) *domain.Alert {
	zone, ok := stringValue(event.Data, "zone")
	if !ok {
		e.logger.Warn("motion event missing zone", "event_id", event.ID)
		return nil
	}

	if !e.isRestrictedZone(zone) {
		return nil
	}
	if !e.isAfterHours(event) {
		return nil
	}

	photo, ok := stringValue(event.Data, "photo_base64")
	if !ok || photo == "" {
		e.logger.Warn("motion event missing photo_base64", "event_id", event.ID)
		return nil
	}

	return e.newAlert(event, domain.AlertIntrusionDetection, &photo)
}

func (e *Engine) isRestrictedZone(zone string) bool {
	for _, restricted := range e.cfg.RestrictedZones {
		if strings.Contains(zone, restricted) {
			return true
		}
	}
	return false
}

func (e *Engine) isAfterHours(event domain.Event) bool {
	hour := event.Timestamp.Hour()
	return hour >= e.cfg.AfterHoursStart || hour < e.cfg.AfterHoursEnd
}

func (e *Engine) newAlert(event domain.Event, alertType domain.AlertType, photo *string) *domain.Alert {
	eventID := event.ID
	return &domain.Alert{
		EventID:     &eventID,
		DeviceID:    event.DeviceID,
		Type:        alertType,
		Timestamp:   event.Timestamp,
		PhotoBase64: photo,
	}
}

func stringValue(data map[string]any, key string) (string, bool) {
	if data == nil {
		return "", false
	}
	s, ok := data[key].(string)
	return s, ok
}

// numericValue accepts the shapes a JSON round trip can produce for a
// number; booleans and numeric strings do not count.
func numericValue(data map[string]any, key string) (float64, bool) {
	if data == nil {
		return 0, false
	}
	switch v := data[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Package event implements the ingestion-side event schema: a tagged
// union over the three supported event kinds with strict field-set
// enforcement. Validation is fail-fast and reports one primary reason.
package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

// Payload is the variant-specific part of a validated event. Concrete
// types are reachable only after checking EventType.
type Payload interface {
	EventType() domain.EventType
	// Fields returns the exact key set persisted in the event's data column.
	Fields() map[string]any
}

// AccessAttempt is reported by access controllers.
type AccessAttempt struct {
	UserID string
}

func (AccessAttempt) EventType() domain.EventType { return domain.EventAccessAttempt }

func (p AccessAttempt) Fields() map[string]any {
	return map[string]any{"user_id": p.UserID}
}

// SpeedViolation is reported by radar units.
type SpeedViolation struct {
	SpeedKmh int64
	Location string
}

func (SpeedViolation) EventType() domain.EventType { return domain.EventSpeedViolation }

func (p SpeedViolation) Fields() map[string]any {
	return map[string]any{"speed_kmh": p.SpeedKmh, "location": p.Location}
}

// MotionDetected is reported by security cameras.
type MotionDetected struct {
	Zone        string
	Confidence  float64
	PhotoBase64 string
}

func (MotionDetected) EventType() domain.EventType { return domain.EventMotionDetected }

func (p MotionDetected) Fields() map[string]any {
	return map[string]any{
		"zone":         p.Zone,
		"confidence":   p.Confidence,
		"photo_base64": p.PhotoBase64,
	}
}

// Incoming is a structurally valid event, normalized (canonical MAC) and
// ready for the registry cross-check and persistence.
type Incoming struct {
	DeviceID  string
	Timestamp time.Time
	Payload   Payload
}

func (i *Incoming) Type() domain.EventType { return i.Payload.EventType() }

// requiredFields holds the exact allowed key set per event type,
// including the common base fields.
var requiredFields = map[domain.EventType]map[string]struct{}{
	domain.EventAccessAttempt: {
		"device_id": {}, "timestamp": {}, "event_type": {},
		"user_id": {},
	},
	domain.EventSpeedViolation: {
		"device_id": {}, "timestamp": {}, "event_type": {},
		"speed_kmh": {}, "location": {},
	},
	domain.EventMotionDetected: {
		"device_id": {}, "timestamp": {}, "event_type": {},
		"zone": {}, "confidence": {}, "photo_base64": {},
	},
}

const (
	minSpeedKmh = 0
	maxSpeedKmh = 300
)

// Parse validates a raw JSON payload against the schema of its declared
// event type. Numbers are decoded as json.Number so true integers can be
// told apart from numeric strings and booleans.
func Parse(raw []byte) (*Incoming, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, domain.ErrBadRequest.WithError(fmt.Errorf("decode body: %w", err))
	}

	et, err := eventType(body)
	if err != nil {
		return nil, err
	}

	if err := rejectExtraFields(et, body); err != nil {
		return nil, err
	}

	deviceID, err := deviceID(body)
	if err != nil {
		return nil, err
	}

	ts, err := timestamp(body)
	if err != nil {
		return nil, err
	}

	payload, err := parsePayload(et, body)
	if err != nil {
		return nil, err
	}

	return &Incoming{DeviceID: deviceID, Timestamp: ts, Payload: payload}, nil
}

// CheckDeviceType enforces the one-event-type-per-device-type rule. It
// runs after structural validation, once the sensor's registered type is
// known.
func CheckDeviceType(deviceType domain.DeviceType, et domain.EventType) error {
	allowed, ok := deviceType.AllowedEventType()
	if !ok {
		return domain.ErrDeviceEventMismatch.WithMessage(
			fmt.Sprintf("Unknown device type '%s'", deviceType))
	}
	if allowed != et {
		return domain.ErrDeviceEventMismatch.WithMessage(fmt.Sprintf(
			"Event type '%s' not valid for device type '%s'. Expected '%s'",
			et, deviceType, allowed))
	}
	return nil
}

func eventType(body map[string]any) (domain.EventType, error) {
	raw, ok := body["event_type"]
	if !ok {
		return "", domain.ErrUnknownEventType.WithMessage("event_type is required")
	}
	s, ok := raw.(string)
	if !ok || !domain.EventType(s).Valid() {
		return "", domain.ErrUnknownEventType.WithMessage(
			fmt.Sprintf("Unknown event type '%v'", raw))
	}
	return domain.EventType(s), nil
}

func rejectExtraFields(et domain.EventType, body map[string]any) error {
	allowed := requiredFields[et]

	var extras []string
	for key := range body {
		if _, ok := allowed[key]; !ok {
			extras = append(extras, key)
		}
	}
	if len(extras) == 0 {
		return nil
	}

	sort.Strings(extras)
	return domain.ErrExtraFields.WithMessage(fmt.Sprintf(
		"Fields not allowed for event type '%s': %s", et, strings.Join(extras, ", ")))
}

func deviceID(body map[string]any) (string, error) {
	raw, ok := body["device_id"]
	if !ok {
		return "", domain.ErrValidationFailed.WithMessage("device_id is required")
	}
	s, ok := raw.(string)
	if !ok {
		return "", domain.ErrInvalidDeviceID
	}
	mac, ok := domain.CanonicalMAC(s)
	if !ok {
		return "", domain.ErrInvalidDeviceID
	}
	return mac, nil
}

func timestamp(body map[string]any) (time.Time, error) {
	raw, ok := body["timestamp"]
	if !ok {
		return time.Time{}, domain.ErrValidationFailed.WithMessage("timestamp is required")
	}
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, domain.ErrValidationFailed.WithMessage(
			"timestamp must be an ISO-8601 datetime string")
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.ErrValidationFailed.WithMessage(
			fmt.Sprintf("timestamp '%s' is not a valid ISO-8601 datetime", s))
	}
	return ts, nil
}

func parsePayload(et domain.EventType, body map[string]any) (Payload, error) {
	switch et {
	case domain.EventAccessAttempt:
		return parseAccessAttempt(body)
	case domain.EventSpeedViolation:
		return parseSpeedViolation(body)
	case domain.EventMotionDetected:
		return parseMotionDetected(body)
	}
	return nil, domain.ErrUnknownEventType.WithMessage(fmt.Sprintf("Unknown event type '%s'", et))
}

func parseAccessAttempt(body map[string]any) (Payload, error) {
	userID, err := stringField(body, "user_id")
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, domain.ErrValidationFailed.WithMessage("user_id must not be empty")
	}
	return AccessAttempt{UserID: userID}, nil
}

func parseSpeedViolation(body map[string]any) (Payload, error) {
	raw, ok := body["speed_kmh"]
	if !ok {
		return nil, domain.ErrValidationFailed.WithMessage("speed_kmh is required")
	}
	num, ok := raw.(json.Number)
	if !ok {
		return nil, domain.ErrValidationFailed.WithMessage(
			"speed_kmh must be an integer, not a string or boolean")
	}
	speed, err := num.Int64()
	if err != nil {
		return nil, domain.ErrValidationFailed.WithMessage("speed_kmh must be an integer")
	}
	if speed < minSpeedKmh || speed > maxSpeedKmh {
		return nil, domain.ErrValidationFailed.WithMessage(fmt.Sprintf(
			"speed_kmh must be between %d and %d, got %d", minSpeedKmh, maxSpeedKmh, speed))
	}

	location, err := stringField(body, "location")
	if err != nil {
		return nil, err
	}

	return SpeedViolation{SpeedKmh: speed, Location: location}, nil
}

func parseMotionDetected(body map[string]any) (Payload, error) {
	zone, err := stringField(body, "zone")
	if err != nil {
		return nil, err
	}

	raw, ok := body["confidence"]
	if !ok {
		return nil, domain.ErrValidationFailed.WithMessage("confidence is required")
	}
	num, ok := raw.(json.Number)
	if !ok {
		return nil, domain.ErrValidationFailed.WithMessage(
			"confidence must be a number, not a string or boolean")
	}
	confidence, convErr := num.Float64()
	if convErr != nil {
		return nil, domain.ErrValidationFailed.WithMessage("confidence must be a number")
	}
	if confidence < 0.0 || confidence > 1.0 {
		return nil, domain.ErrValidationFailed.WithMessage(fmt.Sprintf(
			"confidence must be between 0.0 and 1.0, got %v", confidence))
	}

	photo, err := stringField(body, "photo_base64")
	if err != nil {
		return nil, err
	}
	if err := validatePhoto(photo); err != nil {
		return nil, domain.ErrValidationFailed.WithMessage(
			fmt.Sprintf("photo_base64 is not a valid image: %v", err))
	}

	return MotionDetected{Zone: zone, Confidence: confidence, PhotoBase64: photo}, nil
}

func stringField(body map[string]any, key string) (string, error) {
	raw, ok := body[key]
	if !ok {
		return "", domain.ErrValidationFailed.WithMessage(key + " is required")
	}
	s, ok := raw.(string)
	if !ok {
		return "", domain.ErrValidationFailed.WithMessage(key + " must be a string")
	}
	return s, nil
}

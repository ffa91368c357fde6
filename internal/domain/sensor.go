package domain

import "time"

// DeviceType is the closed set of supported sensor kinds.
type DeviceType string

const (
	DeviceAccessController DeviceType = "access_controller"
	DeviceRadar            DeviceType = "radar"
	DeviceSecurityCamera   DeviceType = "security_camera"
)

// EventType is the closed set of event kinds sensors can report.
type EventType string

const (
	EventAccessAttempt  EventType = "access_attempt"
	EventSpeedViolation EventType = "speed_violation"
	EventMotionDetected EventType = "motion_detected"
)

// allowedEvents maps each device type to the single event type it may report.
var allowedEvents = map[DeviceType]EventType{
	DeviceAccessController: EventAccessAttempt,
	DeviceRadar:            EventSpeedViolation,
	DeviceSecurityCamera:   EventMotionDetected,
}

func (d DeviceType) Valid() bool {
	_, ok := allowedEvents[d]
	return ok
}

// AllowedEventType returns the event type this device type is permitted to send.
func (d DeviceType) AllowedEventType() (EventType, bool) {
	et, ok := allowedEvents[d]
	return et, ok
}

func (e EventType) Valid() bool {
	switch e {
	case EventAccessAttempt, EventSpeedViolation, EventMotionDetected:
		return true
	}
	return false
}

// Sensor is a registered physical device, identified by its MAC address.
type Sensor struct {
	ID         int64      `json:"id"`
	DeviceID   string     `json:"device_id"`
	DeviceType DeviceType `json:"device_type"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

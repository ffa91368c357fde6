package domain

import "time"

// Event is a single accepted observation from a registered sensor.
// Data holds exactly the variant-specific fields for the event type.
// Events are append-only: never updated, never deleted.
type Event struct {
	ID        int64          `json:"id"`
	SensorID  int64          `json:"sensor_id"`
	DeviceID  string         `json:"device_id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"event_type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// EventFilter narrows event queries. Zero values mean "no filter".
type EventFilter struct {
	StartTime  *time.Time
	EndTime    *time.Time
	EventType  EventType
	DeviceType DeviceType
}

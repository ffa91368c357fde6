package domain

import "time"

// AlertType is the closed set of alert kinds the decision engine can raise.
type AlertType string

const (
	AlertUnauthorizedAccess AlertType = "unauthorized_access"
	AlertSpeedViolation     AlertType = "speed_violation"
	AlertIntrusionDetection AlertType = "intrusion_detection"
)

func (a AlertType) Valid() bool {
	switch a {
	case AlertUnauthorizedAccess, AlertSpeedViolation, AlertIntrusionDetection:
		return true
	}
	return false
}

// Alert is a rule-violation record derived from an event. PhotoBase64 is
// populated only for intrusion_detection alerts. EventID is nullable: an
// alert may be raised outside the normal event flow.
type Alert struct {
	ID          int64     `json:"id"`
	EventID     *int64    `json:"event_id"`
	DeviceID    string    `json:"device_id"`
	Type        AlertType `json:"alert_type"`
	Timestamp   time.Time `json:"timestamp"`
	PhotoBase64 *string   `json:"photo_base64,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AlertFilter narrows alert queries. Zero values mean "no filter".
type AlertFilter struct {
	AlertType AlertType
	DeviceID  string
	StartTime *time.Time
	EndTime   *time.Time
}

package domain

import "time"

// AuthorizedUser is an identifier permitted to trigger access without
// raising an alert.
type AuthorizedUser struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

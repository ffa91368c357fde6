package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// WithMessage keeps the code and status but replaces the message, for
// errors that must name the offending field or value.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    msg,
		StatusCode: e.StatusCode,
		Err:        e.Err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrUnknownEventType = &AppError{
		Code:       "UNKNOWN_EVENT_TYPE",
		Message:    "Event type is missing or not supported",
		StatusCode: 422,
	}

	ErrExtraFields = &AppError{
		Code:       "EXTRA_FIELDS_NOT_ALLOWED",
		Message:    "Payload contains fields not allowed for this event type",
		StatusCode: 422,
	}

	ErrInvalidDeviceID = &AppError{
		Code:       "INVALID_DEVICE_ID",
		Message:    "Invalid MAC address format. Expected format: XX:XX:XX:XX:XX:XX",
		StatusCode: 422,
	}

	ErrDeviceNotRegistered = &AppError{
		Code:       "DEVICE_NOT_REGISTERED",
		Message:    "Payloads from unregistered sensors are restricted",
		StatusCode: 403,
	}

	ErrDeviceEventMismatch = &AppError{
		Code:       "DEVICE_EVENT_MISMATCH",
		Message:    "Event type not valid for this device type",
		StatusCode: 400,
	}

	ErrSensorExists = &AppError{
		Code:       "SENSOR_ALREADY_EXISTS",
		Message:    "A sensor with this device_id is already registered",
		StatusCode: 409,
	}

	ErrSensorNotFound = &AppError{
		Code:       "SENSOR_NOT_FOUND",
		Message:    "Sensor not found",
		StatusCode: 404,
	}

	ErrUserExists = &AppError{
		Code:       "USER_ALREADY_EXISTS",
		Message:    "An authorized user with this user_id already exists",
		StatusCode: 409,
	}

	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "Authorized user not found",
		StatusCode: 404,
	}

	ErrAlertNotFound = &AppError{
		Code:       "ALERT_NOT_FOUND",
		Message:    "Alert not found",
		StatusCode: 404,
	}
)

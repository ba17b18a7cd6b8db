package errors

import (
	"net/http"

	"fleetwatch/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Vehicle-related errors
	ErrVehicleNotFound = NewBaseError(
		http.StatusNotFound,
		"VEHICLE_NOT_FOUND",
		"Vehicle not found",
		"",
	)

	ErrVehicleAlreadyExists = NewBaseError(
		http.StatusConflict,
		"VEHICLE_ALREADY_EXISTS",
		"A vehicle with this plate number already exists",
		"",
	)

	// Driver-related errors
	ErrDriverNotFound = NewBaseError(
		http.StatusNotFound,
		"DRIVER_NOT_FOUND",
		"Driver not found",
		"",
	)

	ErrDriverAlreadyExists = NewBaseError(
		http.StatusConflict,
		"DRIVER_ALREADY_EXISTS",
		"A driver with this license number already exists",
		"",
	)

	// Route-related errors
	ErrRouteNotFound = NewBaseError(
		http.StatusNotFound,
		"ROUTE_NOT_FOUND",
		"Route not found",
		"",
	)

	ErrRouteCompleted = NewBaseError(
		http.StatusConflict,
		"ROUTE_COMPLETED",
		"Route already reached a terminal status",
		"",
	)

	// Tracking-related errors
	ErrNoPositionData = NewBaseError(
		http.StatusNotFound,
		"NO_POSITION_DATA",
		"No position data recorded for this route yet",
		"",
	)

	ErrInvalidCoordinates = NewBaseError(
		http.StatusBadRequest,
		"INVALID_COORDINATES",
		"Coordinates are outside WGS84 bounds",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// Generic persistence errors
	ErrDatabaseExecute = NewBaseError(
		http.StatusInternalServerError,
		"DATABASE_EXECUTE_ERROR",
		"Database operation failed",
		"",
	)
)

// NewDatabaseExecuteError wraps a low-level database error into an AppError
// while keeping the original message in the details field.
func NewDatabaseExecuteError(err error, message string) error {
	return errors.Wrap(ErrDatabaseExecute.WithDetails(err.Error()), message)
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common conditions.
var (
	ErrValidation   = errors.New("validation error")
	ErrLaunch       = errors.New("launch error")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError is a structured error with an HTTP status code and optional fields.
type AppError struct {
	Err     error
	Message string
	Status  int
	Fields  map[string]string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation creates a 400 error for malformed caller input.
func Validation(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusBadRequest,
	}
}

// Launch creates an error for a runner binary that could not be started.
// Distinct from a shortcut that ran and exited non-zero.
func Launch(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrLaunch,
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusBadGateway,
	}
}

// Unauthorized creates a 401 error for a missing or invalid credential.
func Unauthorized(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusUnauthorized,
	}
}

// HTTPStatus extracts the HTTP status code from an error, defaulting to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

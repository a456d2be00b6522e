package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the repositories and services. Wrap them, then test with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrSlotUnavailable    = errors.New("slot unavailable")
	ErrSlotConflict       = errors.New("slot conflict")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrValidation         = errors.New("validation failed")
)

// AppError attaches a client-facing message to one of the sentinel errors.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code string, sentinel error, format string, args ...any) error {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

func NotFound(format string, args ...any) error {
	return newAppError("notFound", ErrNotFound, format, args...)
}

func SlotUnavailable(format string, args ...any) error {
	return newAppError("slotUnavailable", ErrSlotUnavailable, format, args...)
}

func SlotConflict(format string, args ...any) error {
	return newAppError("slotConflict", ErrSlotConflict, format, args...)
}

func ServiceUnavailable(format string, args ...any) error {
	return newAppError("serviceUnavailable", ErrServiceUnavailable, format, args...)
}

func Validation(format string, args ...any) error {
	return newAppError("validation", ErrValidation, format, args...)
}

// HTTPStatus maps an error from the service layer to a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrSlotConflict):
		return http.StatusConflict
	case errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message of err; unknown errors get a generic one.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal Server Error"
	}
	return err.Error()
}

package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain. Services return these (or wrap them with
// %w) and the HTTP layer maps them to status codes in one place.
var (
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid session state transition")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrConflict          = errors.New("conflict")
)

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func NotFound(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}

func InvalidTransition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

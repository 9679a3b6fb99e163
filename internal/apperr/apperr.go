// Package apperr defines the error taxonomy shared by services and handlers.
// Services report not-found, forbidden and conflict outcomes explicitly;
// anything else bubbles up and is surfaced as a generic failure.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid request")
)

// NotFound wraps ErrNotFound with the entity name, e.g. "task not found".
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Forbidden wraps ErrForbidden with a caller-facing message.
func Forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

// Conflict wraps ErrConflict with a caller-facing message.
func Conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

// Invalid wraps ErrInvalid with a caller-facing message, for requests that
// are well-formed but not allowed by the domain rules.
func Invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

// Message extracts the caller-facing part of a forbidden/conflict error,
// falling back to the full error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var target error
	switch {
	case errors.Is(err, ErrForbidden):
		target = ErrForbidden
	case errors.Is(err, ErrConflict):
		target = ErrConflict
	case errors.Is(err, ErrInvalid):
		target = ErrInvalid
	default:
		return err.Error()
	}
	msg := err.Error()
	prefix := target.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// FieldError carries field-level validation detail.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func Validation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

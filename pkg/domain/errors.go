package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Entity packages wrap one of these so callers and the web
// boundary can classify any failure with errors.Is.
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrConflict is returned when an operation conflicts with the current state
	ErrConflict = errors.New("conflict")
	// ErrConsistency is returned when an operation would break a ledger invariant
	ErrConsistency = errors.New("consistency error")
	// ErrUnauthorized is returned when a user is not authorized to perform an action
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
)

// NewKind creates a sentinel error that wraps kind.
func NewKind(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

// Validationf returns a validation error with a formatted detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflictf returns a conflict error with a formatted detail.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

package core

import (
	"errors"
	"fmt"
)

// ErrVehicleNotFound is returned by query operations for an unknown vehicle id.
// It is a caller error, not an internal fault.
var ErrVehicleNotFound = errors.New("vehicle not found")

// ErrStaleTimestamp rejects a sample whose timestamp is older than the
// vehicle's currently stored state. The sample is not applied.
var ErrStaleTimestamp = errors.New("sample timestamp older than stored state")

// ValidationError rejects a malformed sample before it touches any state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a sample validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

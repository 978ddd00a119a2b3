package documents

import (
	"errors"
	"fmt"
	"strings"

	"dealdocs-backend/internal/fields"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStaleState         = errors.New("document state changed concurrently")
	ErrStorageUnavailable = errors.New("artifact storage unavailable")
	ErrTimeout            = errors.New("operation timed out")
)

const (
	ErrorCodeValidation         = "VALIDATION_ERROR"
	ErrorCodeNotFound           = "NOT_FOUND"
	ErrorCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrorCodeStaleState         = "STALE_STATE"
	ErrorCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrorCodeTimeout            = "TIMEOUT"
	ErrorCodeInternal           = "INTERNAL_ERROR"
)

// ValidationError carries the per-field failures from schema resolution so
// callers can surface them without parsing error text.
type ValidationError struct {
	Fields []fields.FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

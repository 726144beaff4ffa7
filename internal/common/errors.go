// Package common defines shared constants and sentinel errors used across
// TaskIt components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors. A forged, revoked, or orphaned token all map to this
	// single value so callers cannot tell the cases apart.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError reports field-level validation failures. It is always
// produced before any persistence happens, so a ValidationError implies
// nothing was written.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready to collect
// field failures.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a failure message for the given field. The last message for
// a field wins.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = msg
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// FieldError is a convenience constructor for a single-field failure.
func FieldError(field, msg string) *ValidationError {
	e := NewValidationError()
	e.Add(field, msg)
	return e
}

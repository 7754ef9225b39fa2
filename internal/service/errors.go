package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrIndustryInUse is returned when deleting an industry that businesses still reference.
	ErrIndustryInUse = errors.New("industry is referenced by businesses")
	// ErrInvalidCredentials is returned for unknown operators and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMediaUpload wraps thumbnail hosting failures.
	ErrMediaUpload = errors.New("failed to upload thumbnail")
	// ErrNotification wraps OTP dispatch failures.
	ErrNotification = errors.New("failed to send OTP email")
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// fieldErrors accumulates validation messages, keeping the first one per field.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) has(field string) bool {
	_, ok := f[field]
	return ok
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Message: "Validation failed", Fields: map[string]string(f)}
}

// IsValidationError reports whether err carries field-level validation details.
func IsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound is returned when a content record does not exist or is not visible to the caller
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable is returned by operations that need a datastore when none is configured
	ErrStoreUnavailable = errors.New("datastore not configured")

	// ErrUnauthorized is returned when an owner-scoped operation has no owner
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports missing or malformed caller input. No provider call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ProviderError is a non-2xx answer (or transport failure) from an external AI provider
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// HTTPStatus is the status to surface to callers for this provider failure
func (e *ProviderError) HTTPStatus() int {
	if e.StatusCode >= 400 && e.StatusCode <= 599 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}

// ParseError means the provider answered but not with the structure we asked for
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to parse %s from response", e.What)
	}
	return fmt.Sprintf("failed to parse %s from response: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a provider rate-limit rejection,
// either by status code or by the provider's message text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}

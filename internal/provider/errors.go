package provider

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredentials is returned by Dial when no token is configured.
	ErrMissingCredentials = errors.New("provider: missing API token")
	// ErrPropertyMissing is returned by the Properties accessors for unpublished metrics.
	ErrPropertyMissing = errors.New("provider: property not available")
	// ErrUnknownUnit is returned when a metric carries a unit that cannot be converted.
	ErrUnknownUnit = errors.New("provider: unknown unit")
)

// APIError is a non-2xx response from the provider.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no message"
	}
	return fmt.Sprintf("provider: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Temporary reports whether retrying the request could succeed.
func (e *APIError) Temporary() bool { return e.StatusCode >= 500 }

// IsRetired reports whether err says the backend has been retired.
func IsRetired(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "retired")
}

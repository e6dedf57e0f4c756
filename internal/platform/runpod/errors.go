package runpod

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a normalized provider API failure.
type APIError struct {
	StatusCode int
	Message    string
	NoCapacity bool
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("runpod API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("runpod API error (status %d)", e.StatusCode)
}

// newAPIError classifies a provider error response.
func newAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		NoCapacity: strings.Contains(strings.ToLower(message), "no instances currently available"),
	}
}

// IsNotFound checks if an error indicates the pod does not exist at the provider.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsNoCapacity checks if an error indicates the requested GPU type has no
// available instances. Distinguished so callers can surface an actionable
// message instead of a raw provider error.
func IsNoCapacity(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NoCapacity
}

// Message extracts the provider's human-readable message from an error, or
// the plain error text when the error did not come from the provider API.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

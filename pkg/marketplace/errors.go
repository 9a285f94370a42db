package marketplace

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnreachable wraps transport-level failures: DNS, connect, timeout.
// Callers surface these as transient and keep the draft intact.
var ErrUnreachable = errors.New("marketplace backend unreachable")

// APIError is a non-2xx response from the backend
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// IsValidation reports whether the backend rejected the payload itself
func (e *APIError) IsValidation() bool {
	return e.Status == http.StatusUnprocessableEntity || e.Status == http.StatusBadRequest
}

// IsAuth reports whether the session token was rejected
func (e *APIError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// AsAPIError unwraps an APIError from an error chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

package cafeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cafe-frontdesk/internal/models"
)

// NetworkMessage is shown for transport failures.
const NetworkMessage = "Network error. Please check your connection and try again."

// APIError is an application-level failure: a non-2xx status or an envelope
// with success=false.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// TransportError wraps a failure to reach the backend at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cafeapi.%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsItemsUnavailable reports whether the backend rejected an order because
// some items are no longer on the menu. The backend only signals this in its
// message text.
func IsItemsUnavailable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "not available")
}

// IsUnauthorized reports whether the staff credential was missing or refused.
func IsUnauthorized(err error) bool {
	if errors.Is(err, models.ErrUnauthorized) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// UserMessage picks the text to show a person for err: the server message
// when there is one, a network notice for transport failures, otherwise
// fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return NetworkMessage
	}
	return fallback
}

// HTTPStatus maps a client error to the status a BFF handler should answer
// with: backend 4xx pass through, unreachable backend is 503, anything else
// is 502.
func HTTPStatus(err error) int {
	if errors.Is(err, models.ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

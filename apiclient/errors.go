package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// ErrSessionExpired matches an AuthExpiredError
	ErrSessionExpired = errors.New("session expired")
)

// NetworkError means no response was received
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Message    string // the backend's {"error": "..."} message, when present
}

func newHTTPError(method, url string, status int, body []byte) *HTTPError {
	e := &HTTPError{
		Method:     method,
		URL:        url,
		StatusCode: status,
		Body:       body,
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Error
	}
	return e
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// AuthExpiredError is returned when a token refresh failed. By the time it
// is returned the stored credentials have been cleared and the navigator
// has been sent to the login page.
type AuthExpiredError struct {
	Err error // the refresh failure
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSessionExpired, e.Err)
}

func (e *AuthExpiredError) Unwrap() error {
	return e.Err
}

func (e *AuthExpiredError) Is(target error) bool {
	return target == ErrSessionExpired
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

func isUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// NetworkError wraps a transport failure where no HTTP response was
// received (DNS, dial, timeout, body read).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError is a 4xx response carrying the server's field-level
// `errors` map. The field names and messages are server-defined and
// passed through verbatim for per-field display.
type ValidationError struct {
	Status int
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field, messages := range e.Errors {
		fields = append(fields, fmt.Sprintf("%s %s", field, strings.Join(messages, ", ")))
	}
	sort.Strings(fields)

	return fmt.Sprintf("validation failed: %s", strings.Join(fields, "; "))
}

// AuthError is a 401 response: the request was unauthenticated or the
// token was rejected.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return "unauthorized"
}

// NotFoundError is a 404 response, typically a stale slug.
type NotFoundError struct {
	Status int
}

func (e *NotFoundError) Error() string {
	return "not found"
}

// UnknownError is any other non-2xx response.
type UnknownError struct {
	Status int
	Body   string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, strings.TrimSpace(e.Body))
}

type errorBody struct {
	Errors map[string][]string `json:"errors"`
}

// errorFromResponse classifies a non-2xx response. A 4xx body with an
// `errors` map becomes a ValidationError regardless of exact status,
// except 401 and 404 which have dedicated types.
func errorFromResponse(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return &AuthError{Status: status}
	case http.StatusNotFound:
		return &NotFoundError{Status: status}
	}

	if status >= 400 && status < 500 {
		var parsed errorBody
		if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
			return &ValidationError{Status: status, Errors: parsed.Errors}
		}
	}

	return &UnknownError{Status: status, Body: string(body)}
}

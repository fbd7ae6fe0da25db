package givehub

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrAuthRequired is returned when an operation needs credentials the client
// does not hold. Match it with errors.Is.
var ErrAuthRequired error = &AuthRequiredError{Message: "authentication required"}

// RequestError is returned for API responses with a status of 400 or above.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// ConnectionError is returned when the request never produced an HTTP
// response. It carries no status code.
type ConnectionError struct {
	Method string
	URL    string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// AuthRequiredError reports a missing access or refresh token.
type AuthRequiredError struct {
	Message string
}

func (e *AuthRequiredError) Error() string {
	return e.Message
}

func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}

	return 0
}

// IsUnauthorized reports whether err means the caller must authenticate
// again: a 401 from the API or a missing token.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized || errors.Is(err, ErrAuthRequired)
}

func errorMessage(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "(empty error body)"
	}

	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}

	if json.Unmarshal(body, &payload) == nil {
		switch v := payload.Error.(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
		}

		if payload.Message != "" {
			return payload.Message
		}
	}

	return raw
}

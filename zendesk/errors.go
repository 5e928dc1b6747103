package zendesk

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid zendesk configuration")
	// ErrTransport indicates the request never produced an HTTP response
	ErrTransport = errors.New("zendesk transport error")
	// ErrDecode indicates the response body was not a JSON object
	ErrDecode = errors.New("failed to decode zendesk response")
	// ErrNoCollection indicates a collection key was missing from a response
	ErrNoCollection = errors.New("collection not found in response")
)

// APIError represents an error reported by the Zendesk API
type APIError struct {
	StatusCode int
	Message    string
	Body       string
	Payload    Response
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("zendesk API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("zendesk API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited checks if the error indicates the account hit its rate limit
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func newAPIError(statusCode int, body []byte, payload Response) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    errorMessage(payload),
		Body:       readBodySnippet(body),
		Payload:    payload,
	}
}

// errorMessage extracts a human readable message from the error shapes
// Zendesk uses: {"error":"x","description":"y"}, {"error":"x","error_description":"y"}
// and {"error":{"title":"x","message":"y"}}.
func errorMessage(payload Response) string {
	if payload == nil {
		return ""
	}
	for _, key := range []string{"error_description", "description"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			return msg
		}
	}
	switch e := payload["error"].(type) {
	case string:
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
		if title, ok := e["title"].(string); ok {
			return title
		}
	}
	return ""
}

func readBodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return string(body)
}

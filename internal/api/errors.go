package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// UnknownErrorMessage is shown when no better description of a failure exists.
const UnknownErrorMessage = "An unknown error occurred."

// Error is a failed API call: a non-2xx status, or a 2xx upload response
// that did not report success.
type Error struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// extractMessage pulls a human-readable message out of an error body:
// "message", then a string "detail", then a generic status line.
func extractMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return UnknownErrorMessage
	}
	if payload.Message != "" {
		return payload.Message
	}
	if d, ok := payload.Detail.(string); ok && d != "" {
		return d
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// Message returns the user-facing text for err: the API's own message for
// *Error, otherwise a generic one. Transport details are never shown.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return UnknownErrorMessage
}

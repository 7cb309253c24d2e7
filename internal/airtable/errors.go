package airtable

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("airtable: %d %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("airtable: %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API, for either a missing
// record or a missing table.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// The API reports errors as {"error": {"type", "message"}} but sometimes as
// {"error": "NOT_FOUND"}.
func parseError(status int, body []byte) error {
	apiErr := &Error{StatusCode: status}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var detail struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &detail); err == nil {
			apiErr.Type = detail.Type
			apiErr.Message = detail.Message
		} else {
			var s string
			if err := json.Unmarshal(envelope.Error, &s); err == nil {
				apiErr.Type = s
			}
		}
	}
	if apiErr.Type == "" && apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

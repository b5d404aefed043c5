package apod

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when the service rejects a credential because its
// quota is used up (HTTP 429).
var ErrRateLimited = errors.New("credential rate limited")

// StatusError is returned for any non-200, non-429 response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

package resolver

import (
	"errors"
	"fmt"

	"github.com/hoanghai1803/birthsky/internal/models"
)

var (
	// ErrAllCredentialsExhausted is returned when every credential in the pool
	// hit the service's rate limit during one resolution.
	ErrAllCredentialsExhausted = errors.New("all credentials exhausted")

	// ErrNoImageFound is returned when the attempt ceiling is reached without
	// finding an image record.
	ErrNoImageFound = errors.New("no image found")
)

// ServiceError wraps a transport failure or non-rate-limit service error.
// The cause is reachable with errors.Is and errors.As.
type ServiceError struct {
	Date models.CalendarDate
	Err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Date, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

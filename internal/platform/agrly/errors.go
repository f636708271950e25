package agrly

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is a distinguished error kind for HTTP 401 responses so
// callers can react to a rejected token specifically. The UI deliberately
// does not force a logout on it; that remains the caller's decision.
var ErrUnauthorized = errors.New("agrly: unauthorized")

// StatusError is returned for any non-2xx/3xx response. The body is not
// read on failure; only the numeric status is carried.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("agrly: unexpected status %d", e.Status)
}

// Unwrap makes errors.Is(err, ErrUnauthorized) work for 401 responses.
func (e *StatusError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthorized
	}
	return nil
}

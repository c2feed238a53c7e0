package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized means the upstream rejected the bearer token.
	ErrUnauthorized = errors.New("upstream: unauthorized")
	// ErrForbidden matches an *APIError carrying a 403 status.
	ErrForbidden = errors.New("upstream: forbidden")
	// ErrMalformedEnvelope means the response had no data array.
	ErrMalformedEnvelope = errors.New("upstream: response has no data array")
)

// APIError is a non-success answer from the dashboard API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream status %d", e.Status)
}

// Is reports a 403 answer as ErrForbidden.
func (e *APIError) Is(target error) bool {
	return target == ErrForbidden && e.Status == http.StatusForbidden
}

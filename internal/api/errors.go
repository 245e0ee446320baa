package api

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a non-2xx response from the backend. Message prefers the
// backend-provided message field, falling back to the raw body.
type Error struct {
	Status  int
	Message string
	Body    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned HTTP %d", e.Status)
}

// AuthExpired reports whether the response signals an expired credential.
// The backend answers 401 with a "jwt expired" message when the bearer token
// is stale; a 401 with any other message (bad password, missing token) is not
// an expiry signal.
func (e *Error) AuthExpired() bool {
	return e.Status == 401 && strings.Contains(strings.ToLower(e.Message), "jwt expired")
}

// IsStatus reports whether err is an *Error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

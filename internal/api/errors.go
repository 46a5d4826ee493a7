package api

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned when an authenticated call is attempted without a
// credential. No request is sent in that case; callers must treat this as
// a distinct outcome from confirmed success.
var ErrNoToken = errors.New("api: no token")

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not a
// backend response error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

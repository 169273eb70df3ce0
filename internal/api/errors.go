package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed backend call.
type ErrorKind int

const (
	// ErrTransport means the request never produced a response.
	ErrTransport ErrorKind = iota
	// ErrServerRejected means the backend answered with a non-2xx status.
	ErrServerRejected
)

// Error is a tagged failure from a backend call. Components assert on Kind
// and render user-facing text themselves; Message carries the server-supplied
// error body when the backend provided one.
type Error struct {
	Kind    ErrorKind
	Status  int    // HTTP status for ErrServerRejected, zero otherwise
	Message string // server-supplied error message, may be empty
	Err     error  // underlying transport error, may be nil
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrServerRejected:
		if e.Message != "" {
			return fmt.Sprintf("backend rejected request (status %d): %s", e.Status, e.Message)
		}
		return fmt.Sprintf("backend rejected request (status %d)", e.Status)
	default:
		return fmt.Sprintf("backend request failed: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == ErrTransport
}

// IsServerRejected reports whether err is a non-2xx backend response.
func IsServerRejected(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == ErrServerRejected
}

// ServerMessage extracts the server-supplied message from err, or returns
// fallback when the response carried none (or err is not a backend error).
func ServerMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

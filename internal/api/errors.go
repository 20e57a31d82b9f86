package api

import (
	"errors"
	"fmt"
)

// Error taxonomy for remote calls. Local precondition failures are
// ValidationError and never reach the wire; everything else is derived from
// the transport outcome or the response status code.

// ValidationError is a local precondition failure (empty cart, blank name).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ConflictError means the server rejected an action due to stale or illegal
// state, such as editing an order that is no longer RECEIVED.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Message)
}

// NetworkError wraps a transport failure. The request may or may not have
// reached the server.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is any other non-2xx response, carrying the best-available
// message from the payload.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether the server refused the action for state reasons.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

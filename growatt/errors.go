package growatt

import (
	"errors"
	"fmt"
)

// Error kinds returned by the client. Use errors.Is to classify an error.
var (
	// ErrAuthentication indicates rejected credentials or an unusable login response
	ErrAuthentication = errors.New("growatt authentication failed")
	// ErrEmptyResult indicates a listing returned zero records
	ErrEmptyResult = errors.New("growatt returned no records")
	// ErrTransport indicates a network failure or non-success HTTP status
	ErrTransport = errors.New("growatt transport failure")
	// ErrSessionExpired indicates the session is no longer accepted
	ErrSessionExpired = errors.New("growatt session expired")
	// ErrMalformedResponse indicates a body that is not JSON or lacks a required field
	ErrMalformedResponse = errors.New("malformed growatt response")
	// ErrInvalidArgument indicates the caller passed unusable input
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error describes a failed client operation.
type Error struct {
	Kind       error
	Op         string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func wrapError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

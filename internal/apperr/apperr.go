// Package apperr defines the error taxonomy shared by all services. Handlers
// map each kind onto an HTTP status; the carried message is safe to show to
// the caller.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds, matched with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUpstream     = errors.New("upstream failure")
)

// Error pairs a sentinel kind with a user-facing message describing the
// violated precondition.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation marks user-fixable malformed, missing, or out-of-enum input.
func Validation(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

// Unauthorized marks a missing or invalid credential.
func Unauthorized(format string, args ...interface{}) error {
	return newError(ErrUnauthorized, format, args...)
}

// Forbidden marks an authenticated caller acting outside its permissions.
func Forbidden(format string, args ...interface{}) error {
	return newError(ErrForbidden, format, args...)
}

// NotFound marks a referenced entity that does not exist.
func NotFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

// InvalidState marks an operation that is not legal in the entity's current
// lifecycle state.
func InvalidState(format string, args ...interface{}) error {
	return newError(ErrInvalidState, format, args...)
}

// Upstream marks a failure in a collaborating subsystem.
func Upstream(format string, args ...interface{}) error {
	return newError(ErrUpstream, format, args...)
}

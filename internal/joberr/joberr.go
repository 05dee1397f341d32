// Package joberr models the error taxonomy of spec.md §7 as a typed value
// rather than exception classes, per spec.md §9 "Exceptions for control flow".
package joberr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the error taxonomy entries in spec.md §7.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidState      Kind = "invalid_state"
	KindCannotResume      Kind = "cannot_resume"
	KindUnauthorized      Kind = "unauthorized"
	KindSessionExpired    Kind = "session_expired"
	KindInsufficientSpace Kind = "insufficient_space"
	KindWorkerTransient   Kind = "worker_transient"
	KindWorkerPermanent   Kind = "worker_permanent"
	KindInternal          Kind = "internal"
)

// httpStatus maps each Kind to the status code used by the Control API.
var httpStatus = map[Kind]int{
	KindValidation:        http.StatusBadRequest,
	KindNotFound:          http.StatusNotFound,
	KindInvalidState:      http.StatusBadRequest,
	KindCannotResume:      http.StatusBadRequest,
	KindUnauthorized:      http.StatusUnauthorized,
	KindSessionExpired:    http.StatusUnauthorized,
	KindInsufficientSpace: http.StatusServiceUnavailable,
	KindWorkerTransient:   http.StatusInternalServerError,
	KindWorkerPermanent:   http.StatusInternalServerError,
	KindInternal:          http.StatusInternalServerError,
}

// Error is the taxonomy-carrying error value. Retryable is only meaningful
// for KindWorkerTransient/KindWorkerPermanent, set by workers publishing an
// error event (spec.md §4.C ErrorPayload.retryable).
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	Details   map[string]any
	cause     error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) WithDetails(d map[string]any) *Error {
	e.Details = d
	return e
}

// HTTPStatus returns the status code the Control API should respond with.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// As reports whether err carries a *Error and, if so, returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Package apperror defines the typed errors shared by the domain, application and
// transport layers.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can decide how to surface it.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindInvalidTransition Kind = "invalid_transition"
	KindConflict          Kind = "conflict"
	KindInvalidState      Kind = "invalid_state"
	KindForbidden         Kind = "forbidden"
	KindGatewayFailure    Kind = "gateway_failure"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against a sentinel of the same kind, so that
// errors.Is(err, apperror.ErrConflict) works for every conflict error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInvalidState      = &Error{Kind: KindInvalidState}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrGatewayFailure    = &Error{Kind: KindGatewayFailure}
)

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewValidationError reports malformed input.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewInvalidTransitionError reports a facet combination that forbids the requested move.
func NewInvalidTransitionError(msg string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: msg}
}

// NewConflictError reports a re-entrant transition or a concurrent modification.
func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NewInvalidStateError reports a data integrity problem.
func NewInvalidStateError(msg string) *Error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

// NewForbiddenError reports an operation not permitted in the current state.
func NewForbiddenError(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NewGatewayError wraps a payment gateway failure.
func NewGatewayError(msg string, err error) *Error {
	return &Error{Kind: KindGatewayFailure, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

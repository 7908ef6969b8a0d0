// Package apperror defines the error kinds surfaced by the gate to its callers.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for the HTTP layer
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindInvalidTransition Kind = "invalid_transition"
	KindAuthorization     Kind = "authorization_error"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal_error"
)

// Error is the error type returned by services and repositories
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, apperror.ErrConflict)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Field == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrAuthorization     = &Error{Kind: KindAuthorization}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrNotFound          = &Error{Kind: KindNotFound}
)

// Validation reports malformed or missing input on a field
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// InvalidTransition reports an action that is not legal from the current state
func InvalidTransition(from, action string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("action %s is not allowed from status %s", action, from),
	}
}

// Unauthorized reports an actor lacking a required capability
func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// Conflict reports a lost race or a violated uniqueness rule
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound reports a missing record
func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// Wrap attaches a kind to an underlying error
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for errors not produced by this package
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

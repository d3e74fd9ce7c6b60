// Package apperr carries the error taxonomy of the task engine. Every
// failure a caller has to react to is one of five kinds, so transports can
// map errors to responses without parsing message text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Unauthenticated: no valid caller identity.
	Unauthenticated Kind = iota + 1
	// Authorization: the caller is known and the resource exists, but the
	// ownership predicate fails.
	Authorization
	// NotFound: no such entity at all.
	NotFound
	// Validation: malformed input, or a cross reference (like a list id)
	// that does not belong to the caller. Field names the offender.
	Validation
	// Storage: the attachment store failed. Propagated, never masked.
	Storage
)

// Error is the one error type the engine returns for expected failures.
type Error struct {
	Kind  Kind
	Field string // set for Validation errors
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Field builds a Validation error naming the field that failed.
func Field(field, msg string) *Error {
	return &Error{Kind: Validation, Field: field, Msg: msg}
}

// Wrap builds an Error of the given kind around a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is an apperr.Error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// KindOf returns the kind of err, or 0 for errors outside the taxonomy.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

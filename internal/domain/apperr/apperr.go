// Package apperr holds the closed set of error kinds the compliance core
// returns. Callers branch on Kind (or errors.Is against the sentinels),
// never on message text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation_error"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindAlreadyApproved   Kind = "already_approved"
	KindStaleState        Kind = "stale_state"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrValidation        = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrConflict          = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Msg: "invalid transition"}
	ErrAlreadyApproved   = &Error{Kind: KindAlreadyApproved, Msg: "already approved"}
	ErrStaleState        = &Error{Kind: KindStaleState, Msg: "stale state, re-fetch and retry"}
)

type Error struct {
	Kind Kind
	Msg  string
	// Field names the offending input for KindValidation.
	Field string
	// Ref identifies the record involved, e.g. the existing requirement on a Conflict.
	Ref string
	Err error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(ref, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Ref: ref, Msg: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf(format, args...)}
}

func AlreadyApproved(ref string) *Error {
	return &Error{Kind: KindAlreadyApproved, Ref: ref, Msg: "requirement already approved"}
}

func StaleState(ref string) *Error {
	return &Error{Kind: KindStaleState, Ref: ref, Msg: "requirement changed concurrently, re-fetch and retry"}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when err
// is not an apperr (infrastructure failures).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

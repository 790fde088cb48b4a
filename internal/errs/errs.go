// Package errs holds the failure taxonomy shared by the pricing, numbering and service layers.
//
// Every failure that crosses the service boundary is an *Error carrying a stable Kind. Callers
// render failures with Public, which never exposes wrapped internal errors.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the request layer.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindInvalidDate       Kind = "invalid_date"
	KindSequenceExhausted Kind = "sequence_exhausted"
	KindConflict          Kind = "conflict"
	KindStoreFailure      Kind = "store_failure"
	KindInternal          Kind = "internal"
)

// Retryable reports whether the caller may retry the same request unchanged.
func (k Kind) Retryable() bool {
	return k == KindStoreFailure
}

// Error is a classified failure.
type Error struct {
	// Kind is the stable classification exposed to callers.
	Kind Kind

	// Op is the operation that failed, e.g. "CreateInvoice".
	Op string

	// Field names the offending input for validation failures.
	Field string

	// Message is safe to show to the caller.
	Message string

	// Err is the underlying error. It is never exposed by Public.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, errs.NotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == ""
}

// Kind sentinels for errors.Is.
var (
	Validation        = &Error{Kind: KindValidation}
	NotFound          = &Error{Kind: KindNotFound}
	InvalidDate       = &Error{Kind: KindInvalidDate}
	SequenceExhausted = &Error{Kind: KindSequenceExhausted}
	Conflict          = &Error{Kind: KindConflict}
	StoreFailure      = &Error{Kind: KindStoreFailure}
)

func NewValidation(op, field, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Message: message}
}

func NewNotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func NewInvalidDate(op, value string, err error) *Error {
	return &Error{Kind: KindInvalidDate, Op: op, Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value), Err: err}
}

func NewSequenceExhausted(op, scope string) *Error {
	return &Error{Kind: KindSequenceExhausted, Op: op, Message: fmt.Sprintf("sequence limit reached for %s, choose another week or month", scope)}
}

func NewConflict(op, message string, err error) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: message, Err: err}
}

func NewStoreFailure(op string, err error) *Error {
	return &Error{Kind: KindStoreFailure, Op: op, Message: "record store unavailable, try again", Err: err}
}

// NewInternal wraps an unexpected failure. Public renders it as a generic message.
func NewInternal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Message: "internal error", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Public returns the kind/message pair that may be shown to a caller.
func Public(err error) (Kind, string) {
	var e *Error
	if !errors.As(err, &e) {
		return KindInternal, "internal error"
	}
	if e.Kind == KindInternal {
		return KindInternal, "internal error"
	}
	if e.Field != "" {
		return e.Kind, fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Kind, e.Message
}

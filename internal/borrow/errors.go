package borrow

import (
	"errors"
	"fmt"
)

// Kind classifies a lending failure. Every kind maps to exactly one user-facing
// message and one HTTP status.
type Kind string

const (
	KindInvalidDuration       Kind = "invalid_duration"
	KindUnauthorized          Kind = "unauthorized"
	KindDuplicateActiveBorrow Kind = "duplicate_active_borrow"
	KindUnavailable           Kind = "unavailable"
	KindNotFound              Kind = "not_found"
	KindNotBorrowable         Kind = "not_borrowable"
	KindAlreadyReturned       Kind = "already_returned"
	KindInconsistent          Kind = "inconsistent"
)

var messages = map[Kind]string{
	KindInvalidDuration:       "Borrowing period must be between 1-30 days",
	KindUnauthorized:          "You are not allowed to perform this action",
	KindDuplicateActiveBorrow: "You already have an active borrow for this book",
	KindUnavailable:           "No copies available",
	KindNotFound:              "Not found",
	KindNotBorrowable:         "E-Books cannot be borrowed",
	KindAlreadyReturned:       "This book has already been returned",
	KindInconsistent:          "Copy ledger is inconsistent, the operation was aborted",
}

// Message returns the human-readable text for a kind.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return string(k)
}

// Error is the single error type returned by the lending core.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "create_borrow"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidDuration       = &Error{Kind: KindInvalidDuration}
	ErrUnauthorized          = &Error{Kind: KindUnauthorized}
	ErrDuplicateActiveBorrow = &Error{Kind: KindDuplicateActiveBorrow}
	ErrUnavailable           = &Error{Kind: KindUnavailable}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrNotBorrowable         = &Error{Kind: KindNotBorrowable}
	ErrAlreadyReturned       = &Error{Kind: KindAlreadyReturned}
	ErrInconsistent          = &Error{Kind: KindInconsistent}
)

// NewError builds an *Error for the given operation.
func NewError(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// KindOf extracts the kind from an error chain. Errors that did not originate in
// the lending core report an empty kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsInconsistent reports whether err signals a broken ledger/store invariant.
func IsInconsistent(err error) bool {
	return KindOf(err) == KindInconsistent
}

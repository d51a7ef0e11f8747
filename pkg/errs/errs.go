// Package errs defines the recoverable error taxonomy shared by the
// authorization and privacy engine. Every error carries a Kind so handlers
// can map it to an HTTP status without string matching.
package errs

import "errors"

// Kind classifies an engine error.
type Kind int

const (
	// KindForbidden means the caller's role or permissions are insufficient.
	KindForbidden Kind = iota + 1
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
	// KindSelfConnection means a user tried to connect with themselves.
	KindSelfConnection
	// KindDuplicateConnection means a connection already relates the pair in either direction.
	KindDuplicateConnection
	// KindPolicyDenied means the recipient's privacy policy blocks the request.
	KindPolicyDenied
	// KindState means an invalid state transition was attempted.
	KindState
	// KindConflict means the mutation would violate an aggregate invariant,
	// e.g. removing the last organization owner.
	KindConflict
)

// Error is a kinded, recoverable-by-caller error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Forbidden creates a KindForbidden error.
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// NotFound creates a KindNotFound error.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// SelfConnection creates a KindSelfConnection error.
func SelfConnection(msg string) *Error { return &Error{Kind: KindSelfConnection, Message: msg} }

// DuplicateConnection creates a KindDuplicateConnection error.
func DuplicateConnection(msg string) *Error {
	return &Error{Kind: KindDuplicateConnection, Message: msg}
}

// PolicyDenied creates a KindPolicyDenied error.
func PolicyDenied(msg string) *Error { return &Error{Kind: KindPolicyDenied, Message: msg} }

// State creates a KindState error.
func State(msg string) *Error { return &Error{Kind: KindState, Message: msg} }

// Conflict creates a KindConflict error.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Wrap attaches a cause to a kinded error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or 0 if err is not a kinded error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is a kinded error of the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

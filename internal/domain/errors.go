package domain

import (
	"errors"
	"fmt"
)

// Error is a terminal failure of a single user exchange. Every value is
// reported back to the user as plain text and never aborts the process.
// The code feeds structured handler-summary logs.
type Error struct {
	code string
	text string
}

func (e *Error) Error() string { return e.text }

// Code returns the stable machine-readable identifier of the failure class.
func (e *Error) Code() string { return e.code }

var (
	// ErrBadFormat reports a submission that is not exactly four lines.
	ErrBadFormat = &Error{code: "BAD_FORMAT", text: "message does not have exactly four non-empty lines"}
	// ErrProviderUnavailable reports a transport failure talking to the metadata provider.
	ErrProviderUnavailable = &Error{code: "PROVIDER_UNAVAILABLE", text: "movie database is unavailable"}
	// ErrNoMatch reports a search that returned no candidates.
	ErrNoMatch = &Error{code: "NO_MATCH", text: "no matching movie found"}
	// ErrNoPoster reports a resolved movie without a poster image.
	ErrNoPoster = &Error{code: "NO_POSTER", text: "poster is not available for this movie"}
	// ErrInvalidChoice reports a reply that is not a valid candidate number.
	ErrInvalidChoice = &Error{code: "INVALID_CHOICE", text: "reply is not a valid candidate number"}
	// ErrNoActiveSession reports a numeric reply with nothing pending.
	ErrNoActiveSession = &Error{code: "NO_ACTIVE_SESSION", text: "no pending selection for this user"}
)

// UnknownShorthandError reports the first print or language code that is
// absent from the fixed shorthand tables.
type UnknownShorthandError struct {
	Kind      string // "print" or "language"
	Shorthand string
}

func (e *UnknownShorthandError) Error() string {
	return fmt.Sprintf("unknown %s shorthand %q", e.Kind, e.Shorthand)
}

// Code identifies the failure class for logs.
func (e *UnknownShorthandError) Code() string { return "UNKNOWN_SHORTHAND" }

// ErrorCode extracts the failure-class code from err, unwrapping as needed.
// Unknown errors map to "INTERNAL".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code()
	}
	var se *UnknownShorthandError
	if errors.As(err, &se) {
		return se.Code()
	}
	return "INTERNAL"
}

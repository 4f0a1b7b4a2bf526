package model

import (
	"errors"
	"fmt"
)

// Kind classifies a request-level failure. The string value is reported to
// callers in the "type" field of an error response.
type Kind string

const (
	InvalidConfiguration Kind = "InvalidConfiguration"
	InvalidRequestShape  Kind = "InvalidRequestShape"
	InvalidInput         Kind = "InvalidInput"
	LimitExceeded        Kind = "LimitExceeded"
	Timeout              Kind = "Timeout"
	Internal             Kind = "InternalError"
)

// Error is the single typed failure a computation reports for a whole request.
type Error struct {
	Kind  Kind
	Field string // offending wire field, if any
	Msg   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Package domainerrors provides coded domain errors shared across services.
//
// Services translate infrastructure sentinels (pkg/platform/sentinel) into
// coded errors; transport translates codes into HTTP statuses. Business
// outcomes are exported error values built with New so callers can branch
// with errors.Is while generic middleware can branch on the code alone.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and logging.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal_error"
)

// Error is a coded domain error. It is a value type so errors created with
// New compare equal under errors.Is, which lets packages export business
// outcomes as plain vars.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New builds a coded error with no underlying cause.
func New(code Code, message string) Error {
	return Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As chains.
func Wrap(err error, code Code, message string) Error {
	return Error{Code: code, Message: message, cause: err}
}

func (e Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e Error) Unwrap() error {
	return e.cause
}

// Is matches another Error by code and message, ignoring the cause. This
// keeps errors.Is(err, ErrSomeOutcome) stable across wrapped store failures.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

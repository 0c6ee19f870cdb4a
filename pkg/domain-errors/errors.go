// Package derrors defines the domain error taxonomy. Services translate
// storage sentinels and invariant failures into coded errors; transport
// maps codes onto HTTP statuses. Callers branch on codes via HasCode,
// never on message text.
package derrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for programmatic handling.
type Code string

const (
	// CodeNotFound: the referenced entity or revision does not exist.
	CodeNotFound Code = "not_found"

	// CodeDuplicateKey: a natural key (e.g. a company name) is taken.
	CodeDuplicateKey Code = "duplicate_key"

	// CodeInvalidState: the operation is not legal from the current
	// lifecycle or revision status.
	CodeInvalidState Code = "invalid_state"

	// CodeConflict: a concurrent operation won; for revisions, a pending
	// one already exists for the target entity.
	CodeConflict Code = "conflict"

	// CodeValidation: the request content fails domain validation.
	CodeValidation Code = "validation"

	// CodeBadRequest: the request is malformed before domain validation
	// (unparsable body, invalid id format).
	CodeBadRequest Code = "bad_request"

	// CodeInvariantViolation: an internal model invariant was broken.
	// Surfacing this code uncaught is a bug; callers re-code it.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeTimeout: the operation exceeded its deadline.
	CodeTimeout Code = "timeout"

	// CodeInternal: an unexpected infrastructure failure.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a coded error with a static message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}

// CodeOf returns the code of the outermost domain error, or CodeInternal
// when err is not a domain error.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// MessageOf returns the message of the outermost domain error, or an empty
// string when err is not a domain error.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}

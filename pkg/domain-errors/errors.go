// Package domainerrors provides coded errors for domain and service layers.
//
// Services return these so transport can map them to HTTP statuses without
// string matching. For infrastructure facts (row missing, key conflict) stores
// return pkg/platform/sentinel errors instead; services translate at the edge.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and branching.
type Code string

const (
	// CodeBadRequest: request could not be decoded or is structurally invalid.
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput: a field value failed domain validation.
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation: a cross-field or stateful validation failed.
	CodeValidation Code = "validation"
	// CodeNotFound: the referenced entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict: the operation conflicts with existing state.
	CodeConflict Code = "conflict"
	// CodeUnauthorized: caller identity is missing or invalid.
	CodeUnauthorized Code = "unauthorized"
	// CodeInvariantViolation: internal state broke a documented invariant.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal: unexpected failure with no caller remedy.
	CodeInternal Code = "internal"
)

// Error is a domain error carrying a classification code.
type Error struct {
	code    Code
	message string
	cause   error
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap annotates an underlying error with a domain code and message.
func Wrap(err error, code Code, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// Code returns the classification code.
func (e *Error) Code() Code {
	return e.code
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Message returns the caller-safe message without the wrapped cause.
func (e *Error) Message() string {
	return e.message
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}

// Package domainerrors provides coded errors shared across the onboarding
// engine. Services attach a Code so transport layers can translate failures
// without string matching, and attach Details so user-recoverable errors can
// name exactly what went wrong (e.g. every missing finalize field at once).
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for API translation and branching.
type Code string

// Generic codes used across all modules.
const (
	CodeInternal           Code = "internal_error"
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
)

// Onboarding error kinds. These are part of the public API contract: the
// string value is surfaced verbatim in error responses so clients can branch
// on it.
const (
	CodeEmailAlreadyExists    Code = "email_already_exists"
	CodeDocumentAlreadyExists Code = "document_already_exists"
	CodeInvalidDocument       Code = "invalid_document"
	CodeMissingRequiredFields Code = "missing_required_fields"
	CodeWeakPassword          Code = "weak_password"
	CodeEmailNotVerified      Code = "email_not_verified"
	CodePhoneNotVerified      Code = "phone_not_verified"
	CodeVerificationFailed    Code = "verification_failed"
)

// Error is a coded error with optional structured details and a wrapped cause.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error { return e.cause }

// WithDetail attaches a structured detail and returns the same error for
// chaining: dErrors.New(code, msg).WithDetail("fields", missing).
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error that wraps a cause. The cause stays reachable
// via errors.Is/errors.As but is never surfaced to API clients.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the code carried by err, or CodeInternal when err is not a
// coded error. Unclassified store/gateway failures deliberately collapse to
// internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// DetailsOf returns the structured details carried by err, if any.
func DetailsOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

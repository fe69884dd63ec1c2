// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer middleware
// automatically maps them to appropriate HTTP status codes.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindConflict indicates a conflict with existing state (e.g., a lost
	// optimistic-concurrency race).
	KindConflict
	// KindForbidden indicates the action is not allowed for the principal.
	KindForbidden
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// Stable machine-readable codes for the outcome-recording error taxonomy.
// These are part of the API contract: callers branch on Code, not Message.
const (
	CodeInvalidOutcomeType = "INVALID_OUTCOME_TYPE"
	CodeInvalidTimestamp   = "INVALID_TIMESTAMP"
	CodeLeadNotFound       = "LEAD_NOT_FOUND"
	CodeSequenceBlocked    = "SEQUENCE_BLOCKED"
	CodeTenantMismatch     = "TENANT_MISMATCH"
)

// Error is a domain error with a typed Kind for HTTP mapping and an
// optional stable Code for caller branching.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Op      string // Operation that failed (optional)
	Err     error  // Underlying error (optional)
	Details any    // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithCode returns the error with a stable machine-readable code set.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithDetails returns the error with additional details.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// Domain constructors for the outcome-recording taxonomy.

// InvalidOutcomeType reports an outcome type outside the known set.
func InvalidOutcomeType(value string) *Error {
	return Validation(fmt.Sprintf("unknown outcome type %q", value)).WithCode(CodeInvalidOutcomeType)
}

// InvalidTimestamp reports an occurred-at value outside the sane window.
func InvalidTimestamp(message string) *Error {
	return Validation(message).WithCode(CodeInvalidTimestamp)
}

// LeadNotFound reports a lead id that does not resolve within the tenant.
func LeadNotFound() *Error {
	return NotFound("lead not found").WithCode(CodeLeadNotFound)
}

// SequenceBlocked reports a hard validation block. The block reasons are
// attached as Details so the caller can surface them.
func SequenceBlocked(blocks []string) *Error {
	return Conflict("outcome sequence blocked").WithCode(CodeSequenceBlocked).WithDetails(blocks)
}

// TenantMismatch reports an attempted cross-tenant access.
func TenantMismatch() *Error {
	return Forbidden("resource does not belong to tenant").WithCode(CodeTenantMismatch)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// GetCode extracts the stable code from an error, or "" when untyped.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

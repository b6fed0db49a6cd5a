// Package errors provides the standardized error taxonomy for the
// rotation marketplace core. Every write operation resolves to either a
// success value or exactly one of these named kinds.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidation            ErrorCode = "VALIDATION_ERROR"
	ErrCodeSeatUnavailable       ErrorCode = "SEAT_UNAVAILABLE"
	ErrCodeDuplicateApplication  ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeProgramInactive       ErrorCode = "PROGRAM_INACTIVE"
	ErrCodeIllegalTransition     ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"
	ErrCodeInvalidSectionPayload ErrorCode = "INVALID_SECTION_PAYLOAD"
	ErrCodeCapacityExceeded      ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeForbidden             ErrorCode = "FORBIDDEN"
	ErrCodeDatabase              ErrorCode = "DATABASE_ERROR"
)

// Sentinels for errors.Is checks in services and handlers.
var (
	ErrSeatUnavailable       = errors.New("SEAT_UNAVAILABLE")
	ErrDuplicateApplication  = errors.New("DUPLICATE_APPLICATION")
	ErrProgramInactive       = errors.New("PROGRAM_INACTIVE")
	ErrIllegalTransition     = errors.New("ILLEGAL_TRANSITION")
	ErrNotFound              = errors.New("NOT_FOUND")
	ErrInvalidSectionPayload = errors.New("INVALID_SECTION_PAYLOAD")
	ErrCapacityExceeded      = errors.New("CAPACITY_EXCEEDED")
	ErrValidation            = errors.New("VALIDATION_ERROR")
	ErrForbidden             = errors.New("FORBIDDEN")
	ErrDatabase              = errors.New("DATABASE_ERROR")
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Field     string    `json:"field,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`

	sentinel error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match a StandardError against its sentinel.
func (e *StandardError) Is(target error) bool {
	return e.sentinel == target
}

// Unwrap exposes the sentinel for errors.Is chains.
func (e *StandardError) Unwrap() error {
	return e.sentinel
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a field-level validation error. The field name
// is surfaced verbatim to the caller.
func NewValidationError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   fmt.Sprintf("Validation failed for field '%s'", field),
		Details:   details,
		Field:     field,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrValidation,
	}
}

// NewSeatUnavailableError signals that a program has no open seats.
func NewSeatUnavailableError(programID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSeatUnavailable,
		Message:   "No seats available for program",
		Details:   fmt.Sprintf("programId: %s", programID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrSeatUnavailable,
	}
}

// NewDuplicateApplicationError signals an existing blocking application.
func NewDuplicateApplicationError(applicantID, programID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "Application already exists",
		Details:   fmt.Sprintf("applicantId: %s, programId: %s", applicantID, programID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrDuplicateApplication,
	}
}

// NewProgramInactiveError signals a claim against a deactivated program.
func NewProgramInactiveError(programID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProgramInactive,
		Message:   "Program is not active",
		Details:   fmt.Sprintf("programId: %s", programID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrProgramInactive,
	}
}

// NewIllegalTransitionError signals a status change outside the transition table.
func NewIllegalTransitionError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIllegalTransition,
		Message:   "Illegal application status transition",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrIllegalTransition,
	}
}

// NewNotFoundError signals an unknown resource id.
func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrNotFound,
	}
}

// NewInvalidSectionPayloadError signals a section payload that does not match
// the schema registered for its content type.
func NewInvalidSectionPayloadError(contentType, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSectionPayload,
		Message:   fmt.Sprintf("Section payload does not match content type '%s'", contentType),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrInvalidSectionPayload,
	}
}

// NewCapacityExceededError signals a seat release that would push
// available_seats past total_seats. The mutation is refused.
func NewCapacityExceededError(programID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCapacityExceeded,
		Message:   "Seat release would exceed program capacity",
		Details:   fmt.Sprintf("programId: %s", programID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrCapacityExceeded,
	}
}

// NewForbiddenError signals an actor lacking the role for an operation.
func NewForbiddenError(requiredRole string) *StandardError {
	return &StandardError{
		Code:      ErrCodeForbidden,
		Message:   "Actor is not authorized for this operation",
		Details:   fmt.Sprintf("requiredRole: %s", requiredRole),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrForbidden,
	}
}

// NewDatabaseError wraps an infrastructure failure. Marked retryable for
// classification only; the core never retries automatically.
func NewDatabaseError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabase,
		Message:   fmt.Sprintf("Database error during %s", op),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		sentinel:  ErrDatabase,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf extracts the ErrorCode from any error produced by this package.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeDatabase
}

// IsBusinessRule reports whether the error is a business-rule violation that
// cannot be resolved by retrying without actor intervention.
func IsBusinessRule(err error) bool {
	switch CodeOf(err) {
	case ErrCodeSeatUnavailable,
		ErrCodeDuplicateApplication,
		ErrCodeProgramInactive,
		ErrCodeIllegalTransition,
		ErrCodeCapacityExceeded:
		return true
	default:
		return false
	}
}

package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"
	ErrCodeInvalidTransition     ErrorCode = "INVALID_TRANSITION"
	ErrCodeTaskFull              ErrorCode = "TASK_FULL"
	ErrCodeTaskNotOpen           ErrorCode = "TASK_NOT_OPEN"
	ErrCodeApplicationClosed     ErrorCode = "APPLICATION_CLOSED"
	ErrCodeDuplicateRegistration ErrorCode = "DUPLICATE_REGISTRATION"
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodeConcurrencyConflict   ErrorCode = "CONCURRENCY_CONFLICT"
	ErrCodeForbidden             ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal              ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound           = NewError(ErrCodeNotFound, "task not found")
	ErrRegistrationNotFound   = NewError(ErrCodeNotFound, "registration not found")
	ErrTaskFull               = NewError(ErrCodeTaskFull, "task has no free slots")
	ErrTaskNotOpen            = NewError(ErrCodeTaskNotOpen, "task is not active")
	ErrApplicationClosed      = NewError(ErrCodeApplicationClosed, "task is not accepting applications")
	ErrDuplicateRegistration  = NewError(ErrCodeDuplicateRegistration, "user already has an active registration for this task")
	ErrConcurrencyConflict    = NewError(ErrCodeConcurrencyConflict, "entity was modified concurrently")
	ErrCapacityBelowOccupancy = NewError(ErrCodeValidationFailed, "max volunteers cannot drop below current volunteers")
	ErrTaskHasRegistrations   = NewError(ErrCodeInvalidTransition, "task with active registrations cannot be deleted")
	ErrUnauthorized           = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden              = NewError(ErrCodeForbidden, "forbidden")
	ErrInvalidPayload         = NewError(ErrCodeValidationFailed, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the code of a domain error, or ErrCodeInternal for anything else.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}

// InvalidTransition reports a state machine move that is not part of the graph.
func InvalidTransition(entity string, from, to fmt.Stringer) *Error {
	return NewError(ErrCodeInvalidTransition, fmt.Sprintf("%s cannot move from %s to %s", entity, from, to))
}

// Internal hides a storage or infrastructure failure behind a generic message.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return err
	}
	return WrapError(ErrCodeInternal, "storage unavailable", err)
}

// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Conflict errors - concurrent or contradictory writes
	ErrConflict           = errors.New("conflicting request")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrPreconditionFailed = errors.New("precondition failed")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "progress", "enrollment", "course"
	Op      string // Operation that failed, e.g., "Create", "Enroll"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound      = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists = NewDomainError("user", "Create", ErrAlreadyExists, "user already exists")
	ErrInvalidEmail      = NewDomainError("user", "Validate", ErrInvalidFormat, "invalid email address")
)

// Course domain errors
var (
	ErrCourseNotFound     = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrLessonNotFound     = NewDomainError("course", "FindLesson", ErrNotFound, "lesson not found")
	ErrInvalidCourseTitle = NewDomainError("course", "Validate", ErrInvalidInput, "invalid course title")
	ErrInvalidMaxSeats    = NewDomainError("course", "Validate", ErrValueOutOfRange, "max seats must be positive")
	ErrInvalidOrderIndex  = NewDomainError("course", "Validate", ErrValueOutOfRange, "order index must be positive")
)

// Enrollment domain errors
var (
	ErrAlreadyEnrolled    = NewDomainError("enrollment", "Enroll", ErrAlreadyExists, "user is already enrolled in this course")
	ErrNotEnrolled        = NewDomainError("enrollment", "Check", ErrPreconditionFailed, "user is not enrolled in this course")
	ErrCourseFull         = NewDomainError("enrollment", "Enroll", ErrCapacityExceeded, "course has no remaining seats")
	ErrEnrollmentNotFound = NewDomainError("enrollment", "Find", ErrNotFound, "enrollment not found")
)

// Progress domain errors
var (
	ErrProgressNotFound = NewDomainError("progress", "Find", ErrNotFound, "progress not found")
	ErrUnknownStatus    = NewDomainError("progress", "ParseStatus", ErrInvalidInput, "unknown progress status")
)

// StatusTransitionError is returned when a progress status change is not
// allowed by the status machine.
type StatusTransitionError struct {
	From string
	To   string
}

// Error implements the error interface.
func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("progress.Transition: transition from %q to %q is not allowed", e.From, e.To)
}

// Is reports the error as a state transition failure.
func (e *StatusTransitionError) Is(target error) bool {
	return errors.Is(ErrStateTransition, target)
}

// RequestIDConflictError is returned when a request ID is replayed against a
// different user/lesson pair than the one it originally created.
type RequestIDConflictError struct {
	RequestID string
	UserID    string
	LessonID  string
}

// Error implements the error interface.
func (e *RequestIDConflictError) Error() string {
	return fmt.Sprintf("progress.Create: request %q was already used for user %s lesson %s", e.RequestID, e.UserID, e.LessonID)
}

// Is reports the error as a conflict.
func (e *RequestIDConflictError) Is(target error) bool {
	return errors.Is(ErrConflict, target)
}

// PrerequisitesNotMetError is returned when a lesson is attempted before all
// earlier lessons in the course have a terminal outcome.
type PrerequisitesNotMetError struct {
	UserID            string
	LessonID          string
	PrerequisiteID    string
	PrerequisiteTitle string
}

// Error implements the error interface.
func (e *PrerequisitesNotMetError) Error() string {
	return fmt.Sprintf("progress.Prerequisites: user %s must finish lesson %q before lesson %s", e.UserID, e.PrerequisiteTitle, e.LessonID)
}

// Is reports the error as a failed precondition.
func (e *PrerequisitesNotMetError) Is(target error) bool {
	return errors.Is(ErrPreconditionFailed, target)
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsConflict checks if the error describes a state the request contradicts:
// duplicate writes, exhausted capacity, or unmet business preconditions.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrPreconditionFailed)
}

// IsStateTransition checks if the error is an invalid status transition.
func IsStateTransition(err error) bool {
	return errors.Is(err, ErrStateTransition)
}

// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")

	// Lookup errors
	ErrNotFound = errors.New("entity not found")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION ERROR
// ══════════════════════════════════════════════════════════════════════════════

// ValidationError is the single error kind raised by the import pipeline.
// Cause is only set when a lower-level failure (a JSON syntax error, for
// instance) is being re-raised.
type ValidationError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the cause so errors.As can reach the parse failure.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() matching against ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error without a cause.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NewValidationErrorf creates a validation error with a formatted message.
func NewValidationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// WrapValidationError creates a validation error that keeps cause as its
// underlying error.
func WrapValidationError(message string, cause error) *ValidationError {
	return &ValidationError{Message: message, Cause: cause}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERROR
// ══════════════════════════════════════════════════════════════════════════════

// DomainError represents a failure outside the validation pipeline, such as
// applying queries to a datastore, with enough context for logs.
type DomainError struct {
	Domain  string // e.g., "import", "postgres"
	Op      string // Operation that failed, e.g., "Apply", "Connect"
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

// Import domain errors
var (
	ErrMissingGID      = NewValidationError("import options: gid is required")
	ErrNegativeLimit   = NewValidationError("import options: limits cannot be negative")
	ErrEmptyPayload    = NewValidationError("Unable to parse input: payload is empty")
	ErrNoQueries       = NewDomainError("import", "Generate", ErrInvalidState, "generator returned no queries")
	ErrUnknownSchema   = NewDomainError("schema", "Validate", ErrNotFound, "schema is not registered")
	ErrApplyFailed     = NewDomainError("import", "Apply", ErrExternalService, "failed to apply queries")
	ErrExecutorMissing = NewDomainError("import", "Apply", ErrInvalidState, "no query executor configured")
)

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable)
}

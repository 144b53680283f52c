// Package services provides the business logic layer on top of persistence.
package services

import (
	"errors"
	"fmt"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest     = errors.New("invalid request")
	ErrTransformationNil  = errors.New("transformation cannot be nil")
	ErrNameRequired       = errors.New("transformation name is required")
	ErrCategoryRequired   = errors.New("transformation category is required")
	ErrVersionTagRequired = errors.New("version tag is required")
	ErrInvalidType        = errors.New("invalid transformation type")
	ErrInvalidName        = errors.New("transformation name contains forbidden characters")
	ErrIncompleteWiring   = errors.New("test wiring does not cover every exposed input and output")
	ErrIncompatibleWiring = errors.New("test wiring references an adapter endpoint of an incompatible type")
	ErrNotExecutable      = errors.New("transformation is incomplete and cannot be executed")
	ErrUnknownAdapter     = errors.New("unknown adapter")

	// Business Logic Conflicts (409 Conflict).
	ErrReleasedImmutable  = errors.New("released transformation cannot be modified")
	ErrDisabledTerminal   = errors.New("disabled transformation cannot be modified")
	ErrInvalidTransition  = errors.New("lifecycle transition is not allowed")
	ErrDeleteNonDraft     = errors.New("only draft transformations can be deleted")
	ErrVersionTagConflict = errors.New("version tag already exists in revision group")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrTransformationNil) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrCategoryRequired) ||
		errors.Is(err, ErrVersionTagRequired) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrIncompleteWiring) ||
		errors.Is(err, ErrIncompatibleWiring) ||
		errors.Is(err, ErrNotExecutable) ||
		errors.Is(err, ErrUnknownAdapter)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrReleasedImmutable) ||
		errors.Is(err, ErrDisabledTerminal) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrDeleteNonDraft) ||
		errors.Is(err, ErrVersionTagConflict)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewConflictError creates a new conflict error with context.
func NewConflictError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

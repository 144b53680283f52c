// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrTransformationNotFound indicates no transformation exists for the given id.
	ErrTransformationNotFound = errors.New("transformation not found")

	// ErrWiringNotFound indicates no test wiring is stored for the transformation.
	ErrWiringNotFound = errors.New("test wiring not found")

	// ErrVersionTagExists indicates the version tag is already taken inside the revision group.
	ErrVersionTagExists = errors.New("version tag already exists in revision group")

	// ErrReleasedImmutable indicates a write to a released revision was refused.
	ErrReleasedImmutable = errors.New("released transformation is immutable")

	// ErrInvalidState indicates an unknown lifecycle state was provided.
	ErrInvalidState = errors.New("invalid transformation state")
)

// TransformationError wraps transformation storage errors with context.
type TransformationError struct {
	Op               string // Operation being performed (e.g. "GetByID", "Save")
	TransformationID string
	RevisionGroupID  string
	Err              error
}

func (e *TransformationError) Error() string {
	target := e.TransformationID
	if e.RevisionGroupID != "" {
		target = "group " + e.RevisionGroupID
	}

	return fmt.Sprintf("%s operation failed for transformation %s: %v", e.Op, target, e.Err)
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}

func (e *TransformationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewTransformationError creates a new transformation error with context.
func NewTransformationError(op, transformationID string, err error) *TransformationError {
	return &TransformationError{
		Op:               op,
		TransformationID: transformationID,
		Err:              err,
	}
}

// NewRevisionGroupError creates a new transformation error for group operations.
func NewRevisionGroupError(op, revisionGroupID string, err error) *TransformationError {
	return &TransformationError{
		Op:              op,
		RevisionGroupID: revisionGroupID,
		Err:             err,
	}
}

// IsTransformationNotFound checks if an error indicates a missing transformation.
func IsTransformationNotFound(err error) bool {
	return errors.Is(err, ErrTransformationNotFound)
}

// IsWiringNotFound checks if an error indicates a missing test wiring.
func IsWiringNotFound(err error) bool {
	return errors.Is(err, ErrWiringNotFound)
}

// IsVersionTagExists checks if an error indicates a duplicate version tag.
func IsVersionTagExists(err error) bool {
	return errors.Is(err, ErrVersionTagExists)
}

// IsReleasedImmutable checks if an error indicates a refused write to a released revision.
func IsReleasedImmutable(err error) bool {
	return errors.Is(err, ErrReleasedImmutable)
}

// Package domain holds the error kinds shared by the services and the API layer.
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// Resource names used in NotFoundError.
const (
	ResourceTask = "task"
	ResourceTag  = "tag"
)

// ValidationError reports input that failed a declared rule. It is always
// returned before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports an id that does not resolve to a stored entity.
type NotFoundError struct {
	Resource string
	ID       uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// Is lets callers test with errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewTaskNotFoundError creates a not found error for a task id.
func NewTaskNotFoundError(id uint64) *NotFoundError {
	return &NotFoundError{Resource: ResourceTask, ID: id}
}

// NewTagNotFoundError creates a not found error for a tag id.
func NewTagNotFoundError(id uint64) *NotFoundError {
	return &NotFoundError{Resource: ResourceTag, ID: id}
}

// PersistenceError wraps a storage failure that has no more specific kind.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err with the operation that produced it.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err carries a *PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

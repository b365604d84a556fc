package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two failure kinds that surface to callers unchanged.
// Use errors.Is to test for them.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a *ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing entity, keyed by id, name or list index.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError builds a *NotFoundError for a keyed entity.
func NewNotFoundError(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// NewIndexNotFound builds a *NotFoundError for an out-of-range list index.
func NewIndexNotFound(entity string, index int) error {
	return &NotFoundError{Entity: entity, Key: fmt.Sprintf("at index %d", index)}
}

package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrDefaultRule     = errors.New("default rules cannot be deleted")
	ErrTradeNotOpen    = errors.New("trade is not open")
	ErrInvalidLimit    = errors.New("risk limit must be greater than zero")
	ErrStepIncomplete  = errors.New("current step is incomplete")
	ErrDraftNotFound   = errors.New("assessment draft not found")
	ErrTransition      = errors.New("transition not allowed from current step")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError describes a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

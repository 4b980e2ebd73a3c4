package services

import (
	"errors"
	"fmt"

	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

// ===== SERVICE ERROR SENTINELS =====

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrAccountBlocked   = errors.New("account blocked")
)

// ValidationError wraps ErrValidationFailed and carries the per-field
// failures so the HTTP layer can enumerate every invalid field in the
// response body.
type ValidationError struct {
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func NewValidationError(fields validator.ValidationErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

// NewFieldValidationError builds a single-field failure for checks that
// happen outside the struct validator.
func NewFieldValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: validator.ValidationErrors{{Field: field, Message: message}}}
}

// NotFoundError wraps ErrNotFound with the resource that was missing.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError wraps ErrConflict with a client-facing message.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("record already exists")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")

	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrInvalidStatus   = errors.New("invalid status")
)

// ValidationError reports malformed caller input. It unwraps to one of the
// ErrInvalid* sentinels.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// IllegalTransitionError is returned when a status change is not an edge of
// the entity's state machine.
type IllegalTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition from %s to %s", e.Entity, e.From, e.To)
}

func NewIllegalTransitionError(entity, from, to string) *IllegalTransitionError {
	return &IllegalTransitionError{Entity: entity, From: from, To: to}
}

// PersistenceError wraps an unexpected storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

func IsIllegalTransition(err error) bool {
	var t *IllegalTransitionError
	return errors.As(err, &t)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTerminalState     = errors.New("terminal state")
	ErrAuthRequired      = errors.New("user not authenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrOwnership         = errors.New("appointment not found or access denied")
	ErrSlotUnavailable   = errors.New("selected time slot is no longer available")
	ErrNotFound          = errors.New("not found")
	ErrPersistence       = errors.New("persistence failure")
	ErrFetch             = errors.New("fetch failure")

	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired session")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrInvalidResetCode   = errors.New("invalid or expired reset code")
	ErrNetwork            = errors.New("network error")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidTransitionError carries the current and requested status.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition from %s to %s", e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// TerminalStateError rejects a cancellation of a finished entity.
type TerminalStateError struct {
	Entity string
	Status string
}

func (e *TerminalStateError) Error() string {
	if e.Entity == "order" {
		return "cannot cancel completed or delivered orders"
	}
	return fmt.Sprintf("cannot cancel %s in status %s", e.Entity, e.Status)
}

func (e *TerminalStateError) Unwrap() error { return ErrTerminalState }

type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity string, id uuid.UUID) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// StoreError wraps a database failure as ErrPersistence (writes) or ErrFetch (reads).
type StoreError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{e.Kind, e.Err} }

func persistErr(op string, err error) error {
	return &StoreError{Op: op, Kind: ErrPersistence, Err: err}
}

func fetchErr(op string, err error) error {
	return &StoreError{Op: op, Kind: ErrFetch, Err: err}
}

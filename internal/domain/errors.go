package domain

import (
	"errors"
	"fmt"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("no access to this branch")
	ErrConflict     = errors.New("conflicts with current state")
	ErrArchived     = errors.New("complaint is archived")
	ErrPersistence  = errors.New("storage failure")
)

// Validation codes returned to clients next to the field name.
const (
	CodeValidation      = "VALIDATION"
	CodeWarrantyExpired = "WARRANTY_EXPIRED"
	CodeInvalidAction   = "INVALID_ACTION"
	CodeNotResolved     = "NOT_RESOLVED"
)

// ValidationError rejects malformed or missing input before anything is mutated.
// errors.Is matches ErrInvalidInput and any ValidationError with the same Code.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidInput {
		return true
	}
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// Coded validation failures callers branch on.
var (
	ErrWarrantyExpired = &ValidationError{Code: CodeWarrantyExpired, Field: "purchase_date", Message: "warranty expired"}
	ErrInvalidAction   = &ValidationError{Code: CodeInvalidAction, Field: "action", Message: "invalid action"}
	ErrNotResolved     = &ValidationError{Code: CodeNotResolved, Field: "status", Message: "only resolved complaints can be archived"}
)

// Invalid builds a field-level validation error.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Field: field, Message: message}
}

// PersistenceError wraps a storage failure. The transaction has been rolled back
// by the time it reaches the caller; Err keeps the detail for logs only.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence classifies err as a storage failure unless it already carries a domain kind.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrArchived),
		errors.Is(err, ErrPersistence):
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

package scheduling

import "fmt"

// ConflictCode is the machine-readable code surfaced when a slot is occupied.
const ConflictCode = "APPOINTMENT_CONFLICT"

// ConflictError means the requested doctor/day/time slot is already taken.
// User-correctable: pick another time.
type ConflictError struct {
	Code string
}

func (e *ConflictError) Error() string {
	return e.Code
}

func newConflictError() *ConflictError {
	return &ConflictError{Code: ConflictCode}
}

// ForbiddenError means the caller failed an authorization or ownership check.
// Surfaced opaquely; not retryable.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// ValidationError means the input was rejected before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StoreError wraps a persistence failure. Fatal for the request; not retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

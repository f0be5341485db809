/*
errors.go - Error types for the leave core

ERROR CATEGORIES:
  1. Client errors - bad input (range, argument) or not allowed (forbidden)
  2. State errors  - deciding a request that is no longer pending
  3. Lookup errors - unknown request or user id
  4. Store errors  - the external store failed; propagated, never retried

USAGE:
  Match with errors.Is against the sentinels; errors.As against the
  structured types when the details matter:

    if errors.Is(err, leave.ErrInvalidState) { ... }

    var se *leave.InvalidStateError
    if errors.As(err, &se) { log(se.Status) }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a request or user id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when deciding a request that is not pending.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrStoreUnavailable is returned when the external store failed to read or write.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidArgument is returned for malformed input other than ranges.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrForbidden is returned when the acting user may not perform the action.
	ErrForbidden = errors.New("forbidden")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the kind of record that was missing.
type NotFoundError struct {
	Kind string // "user", "request"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidStateError reports a transition attempted from a terminal status.
type InvalidStateError struct {
	RequestID RequestID
	Status    Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("request %s is %s, only pending requests can be decided", e.RequestID, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// RangeError reports an end date before the start date.
type RangeError struct {
	Start Date
	End   Date
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s before start %s", e.End, e.Start)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// StoreError wraps a failure of the external store.
// It matches both ErrStoreUnavailable and the underlying cause.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

// storeErr passes through errors the store already classified and wraps the rest.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidArgument)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

/*
errors.go - Centralized error types for the calendar engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The api package maps these onto HTTP status codes.

ERROR CATEGORIES:
  1. Validation errors - Malformed events or sub-events (client input)
  2. Not-found errors - Referenced parent event missing
  3. Store errors - Persistence failures (local database or remote store)
  4. Application errors - Use-case wrappers carrying operation context

POLICY:
  Validation errors are raised synchronously at construction time and are
  never swallowed. Store errors propagate to the use case, which wraps them
  in an ApplicationError. The holiday ripple downgrades per-parent failures
  to report entries (see ripple.go); the compensation facade degrades
  sub-event load failures to a zero summary (see compensation/summary.go).

SEE ALSO:
  - event.go: Raises validation errors
  - service.go: Wraps store errors with operation context
*/
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned when an event's end is not after its start.
	ErrInvalidInterval = errors.New("invalid interval: end not after start")

	// ErrUnknownEventType is returned for a type outside {oncall, incident, holiday}.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrEventNotFound is returned when a referenced parent event doesn't exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrStoreFailed is returned when a persistence operation fails.
	ErrStoreFailed = errors.New("store operation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports malformed input on an event or sub-event field.
type ValidationError struct {
	Field   string
	Message string
	EventID string
}

func (e *ValidationError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("validation failed on %s for event %s: %s", e.Field, e.EventID, e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Field == "type" {
		return ErrUnknownEventType
	}
	return ErrInvalidInterval
}

// NotFoundError reports a missing parent event.
type NotFoundError struct {
	EventID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("event %s not found", e.EventID) }
func (e *NotFoundError) Unwrap() error { return ErrEventNotFound }

// StoreError wraps a persistence failure with the failing operation.
type StoreError struct {
	Op  string // e.g., "save_events", "delete_sub_events"
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return ErrStoreFailed }

// ApplicationError is the use-case-level wrapper carrying operation context
// so callers can surface meaningful failures without parsing messages.
type ApplicationError struct {
	Op      string
	EventID string
	Type    EventType
	Start   time.Time
	End     time.Time
	Err     error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s failed for event %s (%s %s..%s): %v",
		e.Op, e.EventID, e.Type,
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Err)
}

func (e *ApplicationError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) || errors.Is(err, ErrUnknownEventType)
}

// IsNotFound returns true if the error indicates a missing event.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

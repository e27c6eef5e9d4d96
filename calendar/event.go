/*
Package calendar provides the core on-call calendar engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking on-call
  and incident shifts. Events are subdivided into classified time slices
  (weekday/weekend, night shift, office hours, holiday) that the compensation
  package later prices against a rate table.

KEY CONCEPTS IN THIS FILE (event.go):
  - Event: A user-created calendar entry (on-call, incident, or holiday)
  - SubEvent: A derived, classified slice of a parent event's interval
  - EventType: The closed set of event kinds the engine understands

DESIGN PRINCIPLES:
  1. Validation at construction: malformed intervals never enter the system
  2. Derived data: SubEvents are always regenerable from their parent
  3. Plain data in, plain data out: the engine holds no references to
     events beyond a single calculation call

USAGE:
  ev, err := calendar.NewEvent(calendar.TypeOnCall, start, end, "weekend cover")
  subs, err := calendar.Subdivide(ev, index)

SEE ALSO:
  - clock.go: Time classification rules
  - subdivide.go: Slice generation
  - holiday.go: Holiday containment index
*/
package calendar

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

type EventType string

const (
	TypeOnCall   EventType = "oncall"
	TypeIncident EventType = "incident"
	TypeHoliday  EventType = "holiday"
)

// KnownType reports whether t is one of the recognized event types.
func KnownType(t EventType) bool {
	switch t {
	case TypeOnCall, TypeIncident, TypeHoliday:
		return true
	}
	return false
}

// Billable reports whether events of this type accrue compensation.
func (t EventType) Billable() bool { return t == TypeOnCall || t == TypeIncident }

// =============================================================================
// EVENT - User-visible scheduling entity
// =============================================================================

// Event is a parent calendar event. End is strictly after Start.
type Event struct {
	ID    string    `json:"id"`
	Type  EventType `json:"type"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Title string    `json:"title,omitempty"`
}

// NewEvent validates and constructs an event with a generated id.
func NewEvent(t EventType, start, end time.Time, title string) (Event, error) {
	ev := Event{ID: uuid.NewString(), Type: t, Start: start, End: end, Title: title}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Validate enforces the event invariants: end > start, known type.
func (e Event) Validate() error {
	if !e.End.After(e.Start) {
		return &ValidationError{Field: "end", Message: "end must be after start", EventID: e.ID}
	}
	if !KnownType(e.Type) {
		return &ValidationError{Field: "type", Message: "unknown event type " + string(e.Type), EventID: e.ID}
	}
	return nil
}

// Overlaps reports whether the event's interval intersects [from, to].
func (e Event) Overlaps(from, to time.Time) bool {
	return e.Start.Before(to) && e.End.After(from)
}

// DurationHours returns the event length in fractional hours.
func (e Event) DurationHours() float64 { return DurationHours(e.Start, e.End) }

// =============================================================================
// SUB-EVENT - Derived, classified time slice
// =============================================================================

// SubEvent is an immutable slice of a parent event's interval. All flags are
// evaluated from the slice's Start instant. IsWeekday and IsWeekend are
// mutually exclusive and exhaustive.
type SubEvent struct {
	ID            string    `json:"id"`
	ParentEventID string    `json:"parentEventId"`
	Type          EventType `json:"type"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	IsWeekday     bool      `json:"isWeekday"`
	IsWeekend     bool      `json:"isWeekend"`
	IsHoliday     bool      `json:"isHoliday"`
	IsNightShift  bool      `json:"isNightShift"`
	IsOfficeHours bool      `json:"isOfficeHours"`
}

// NewSubEvent constructs a validated slice with a generated id, evaluating
// all classification flags from start. The holiday flag is resolved by the
// caller against a HolidayIndex (see subdivide.go).
func NewSubEvent(parent Event, start, end time.Time, holiday bool) (SubEvent, error) {
	if !end.After(start) {
		return SubEvent{}, &ValidationError{Field: "end", Message: "sub-event end must be after start", EventID: parent.ID}
	}
	weekend := IsWeekend(start)
	return SubEvent{
		ID:            uuid.NewString(),
		ParentEventID: parent.ID,
		Type:          parent.Type,
		Start:         start,
		End:           end,
		IsWeekday:     !weekend,
		IsWeekend:     weekend,
		IsHoliday:     holiday,
		IsNightShift:  IsNightShift(start),
		IsOfficeHours: IsOfficeHours(start),
	}, nil
}

// DurationHours returns the slice length in fractional hours.
func (s SubEvent) DurationHours() float64 { return DurationHours(s.Start, s.End) }

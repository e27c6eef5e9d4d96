/*
store.go - Persistence interfaces for events and sub-events

PURPOSE:
  Defines the interface between the engine and its storage backends. Parent
  events and their derived sub-events are stored separately; the engine
  treats sub-events as a cache that is deleted and rebuilt whenever the
  parent changes.

IMPLEMENTATIONS:
  - store/sqlite:     Local database (production default)
  - store/caldav:     Remote document store (events as iCal objects)
  - calendar/store:   In-memory, for tests and dev

CASCADE CONTRACT:
  There is no foreign-key constraint from sub-events to events; the owning
  side must cascade. Use-case code deletes sub-events by parent id whenever
  a parent is updated or removed (see service.go).

SEE ALSO:
  - service.go: The use-case layer driving these interfaces
  - ripple.go: Bulk regeneration across parents
*/
package calendar

import (
	"context"
	"time"
)

// =============================================================================
// EVENT STORE - Parent event persistence
// =============================================================================

type EventStore interface {
	// SaveEvents persists new events.
	SaveEvents(ctx context.Context, events []Event) error

	// GetAllEvents returns every stored event.
	GetAllEvents(ctx context.Context) ([]Event, error)

	// GetEvent returns one event, or (nil, nil) when absent.
	GetEvent(ctx context.Context, id string) (*Event, error)

	// UpdateEvent replaces a stored event by id.
	UpdateEvent(ctx context.Context, event Event) error

	// DeleteEvent removes one event by id.
	DeleteEvent(ctx context.Context, id string) error

	// DeleteEvents removes multiple events by id.
	DeleteEvents(ctx context.Context, ids []string) error

	// GetHolidayEvents returns all events of type holiday.
	GetHolidayEvents(ctx context.Context) ([]Event, error)

	// GetEventsOverlappingRange returns events of the given types whose
	// interval intersects [from, to]. Empty types means all types.
	GetEventsOverlappingRange(ctx context.Context, from, to time.Time, types []EventType) ([]Event, error)
}

// =============================================================================
// SUB-EVENT STORE - Derived slice persistence
// =============================================================================

type SubEventStore interface {
	// SaveSubEvents persists a batch of slices.
	SaveSubEvents(ctx context.Context, subs []SubEvent) error

	// GetAllSubEvents returns every stored slice.
	GetAllSubEvents(ctx context.Context) ([]SubEvent, error)

	// GetByParentID returns the slices belonging to one parent, ordered by start.
	GetByParentID(ctx context.Context, parentID string) ([]SubEvent, error)

	// DeleteByParentID removes all slices of one parent.
	DeleteByParentID(ctx context.Context, parentID string) error

	// DeleteByParentIDs removes all slices of multiple parents.
	DeleteByParentIDs(ctx context.Context, parentIDs []string) error
}

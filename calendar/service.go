/*
service.go - Use-case layer for event lifecycle

PURPOSE:
  Coordinates the stores and the subdivider: creating, updating, and
  deleting events, always keeping the derived sub-events in step with
  their parents.

ATOMICITY:
  The delete-old-slices / regenerate / save-new-slices sequence is not
  transactional across stores. A crash between delete and save leaves a
  parent with zero slices until the next recompute; the repair sweeper
  (api/sweeper.go) closes that gap on a schedule.

ERROR POLICY:
  Store failures are wrapped in an ApplicationError carrying the event id,
  type, and interval, then returned to the caller. Validation errors
  propagate unwrapped.

SEE ALSO:
  - ripple.go: Holiday-driven bulk regeneration
  - subdivide.go: Slice generation
*/
package calendar

import (
	"context"
	"time"
)

// Service drives the event lifecycle against a pair of stores.
type Service struct {
	events EventStore
	subs   SubEventStore
}

func NewService(events EventStore, subs SubEventStore) *Service {
	return &Service{events: events, subs: subs}
}

// EventStore exposes the underlying parent-event store.
func (s *Service) EventStore() EventStore { return s.events }

// SubEventStore exposes the underlying sub-event store.
func (s *Service) SubEventStore() SubEventStore { return s.subs }

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// CreateEvent validates, persists, and subdivides a new event. Creating a
// holiday additionally ripples through overlapping on-call/incident events;
// the returned report is nil for non-holiday events.
func (s *Service) CreateEvent(ctx context.Context, t EventType, start, end time.Time, title string) (Event, *RippleReport, error) {
	ev, err := NewEvent(t, start, end, title)
	if err != nil {
		return Event{}, nil, err
	}

	if err := s.events.SaveEvents(ctx, []Event{ev}); err != nil {
		return Event{}, nil, s.wrap("create_event", ev, err)
	}
	if err := s.regenerate(ctx, ev); err != nil {
		return Event{}, nil, s.wrap("create_event", ev, err)
	}

	if ev.Type == TypeHoliday {
		report := s.Ripple(ctx, ev)
		return ev, &report, nil
	}
	return ev, nil, nil
}

// UpdateEvent replaces a stored event and regenerates its slices.
func (s *Service) UpdateEvent(ctx context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	existing, err := s.events.GetEvent(ctx, ev.ID)
	if err != nil {
		return s.wrap("update_event", ev, err)
	}
	if existing == nil {
		return &NotFoundError{EventID: ev.ID}
	}
	if err := s.events.UpdateEvent(ctx, ev); err != nil {
		return s.wrap("update_event", ev, err)
	}
	return s.wrap("update_event", ev, s.regenerate(ctx, ev))
}

// DeleteEvent removes an event and cascades its slices.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	ev, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return &ApplicationError{Op: "delete_event", EventID: id, Err: err}
	}
	if ev == nil {
		return &NotFoundError{EventID: id}
	}
	if err := s.subs.DeleteByParentID(ctx, id); err != nil {
		return s.wrap("delete_event", *ev, err)
	}
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		return s.wrap("delete_event", *ev, err)
	}
	return nil
}

// DeleteMonth removes every event whose start falls in ref's calendar month,
// cascading slice deletion. Returns the number of deleted events.
func (s *Service) DeleteMonth(ctx context.Context, ref time.Time) (int, error) {
	from := StartOfMonth(ref)
	to := StartOfNextMonth(ref)

	all, err := s.events.GetAllEvents(ctx)
	if err != nil {
		return 0, &ApplicationError{Op: "delete_month", Err: err}
	}

	var ids []string
	for _, ev := range all {
		if !ev.Start.Before(from) && ev.Start.Before(to) {
			ids = append(ids, ev.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.subs.DeleteByParentIDs(ctx, ids); err != nil {
		return 0, &ApplicationError{Op: "delete_month", Err: err}
	}
	if err := s.events.DeleteEvents(ctx, ids); err != nil {
		return 0, &ApplicationError{Op: "delete_month", Err: err}
	}
	return len(ids), nil
}

// Regenerate rebuilds the slices of one stored event against the current
// holiday set. Exposed for the repair sweeper.
func (s *Service) Regenerate(ctx context.Context, ev Event) error {
	return s.regenerate(ctx, ev)
}

// =============================================================================
// INTERNAL
// =============================================================================

// regenerate performs the delete + subdivide + save sequence for one parent.
func (s *Service) regenerate(ctx context.Context, ev Event) error {
	index, err := s.holidayIndex(ctx, ev.ID)
	if err != nil {
		return err
	}
	subs, err := Subdivide(ev, index)
	if err != nil {
		return err
	}
	if err := s.subs.DeleteByParentID(ctx, ev.ID); err != nil {
		return err
	}
	return s.subs.SaveSubEvents(ctx, subs)
}

// holidayIndex builds a fresh index from the stored holiday set, excluding
// the event being subdivided so a holiday never classifies itself.
func (s *Service) holidayIndex(ctx context.Context, excludeID string) (*HolidayIndex, error) {
	holidays, err := s.events.GetHolidayEvents(ctx)
	if err != nil {
		return nil, err
	}
	return NewHolidayIndex(holidays).Without(excludeID), nil
}

func (s *Service) wrap(op string, ev Event, err error) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{Op: op, EventID: ev.ID, Type: ev.Type, Start: ev.Start, End: ev.End, Err: err}
}

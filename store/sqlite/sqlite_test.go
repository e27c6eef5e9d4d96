package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/oncall-engine/calendar"
	"github.com/warp/oncall-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func at(day int, hour, min int) time.Time {
	return time.Date(2025, time.January, day, hour, min, 0, 0, time.UTC)
}

func mustEvent(t *testing.T, typ calendar.EventType, start, end time.Time, title string) calendar.Event {
	t.Helper()
	ev, err := calendar.NewEvent(typ, start, end, title)
	require.NoError(t, err)
	return ev
}

// =============================================================================
// EVENT CRUD
// =============================================================================

func TestStore_SaveAndGetEvent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ev := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0), "weekday cover")
	require.NoError(t, store.SaveEvents(ctx, []calendar.Event{ev}))

	got, err := store.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, calendar.TypeOnCall, got.Type)
	assert.Equal(t, "weekday cover", got.Title)
	assert.True(t, got.Start.Equal(ev.Start), "start should round-trip")
	assert.True(t, got.End.Equal(ev.End), "end should round-trip")
}

func TestStore_GetEvent_Missing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetEvent(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got, "a missing event is (nil, nil), not an error")
}

func TestStore_GetAllEvents_OrderedByStart(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	later := mustEvent(t, calendar.TypeOnCall, at(10, 9, 0), at(10, 17, 0), "")
	earlier := mustEvent(t, calendar.TypeIncident, at(6, 9, 0), at(6, 10, 0), "")
	require.NoError(t, store.SaveEvents(ctx, []calendar.Event{later, earlier}))

	all, err := store.GetAllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, earlier.ID, all[0].ID)
	assert.Equal(t, later.ID, all[1].ID)
}

func TestStore_UpdateEvent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ev := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0), "before")
	require.NoError(t, store.SaveEvents(ctx, []calendar.Event{ev}))

	ev.Title = "after"
	ev.End = at(6, 20, 0)
	require.NoError(t, store.UpdateEvent(ctx, ev))

	got, err := store.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "after", got.Title)
	assert.True(t, got.End.Equal(at(6, 20, 0)))
}

func TestStore_UpdateEvent_Missing(t *testing.T) {
	store := newTestStore(t)

	ev := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0), "")
	err := store.UpdateEvent(context.Background(), ev)
	assert.True(t, calendar.IsNotFound(err), "updating a missing event reports not-found, got %v", err)
}

func TestStore_DeleteEvents_Bulk(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0), "")
	b := mustEvent(t, calendar.TypeOnCall, at(7, 9, 0), at(7, 17, 0), "")
	c := mustEvent(t, calendar.TypeOnCall, at(8, 9, 0), at(8, 17, 0), "")
	require.NoError(t, store.SaveEvents(ctx, []calendar.Event{a, b, c}))

	require.NoError(t, store.DeleteEvents(ctx, []string{a.ID, c.ID}))

	all, err := store.GetAllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)

	// An empty id list is a no-op, not an error.
	require.NoError(t, store.DeleteEvents(ctx, nil))
}

// =============================================================================
// QUERIES - Holiday set and overlap ranges
// =============================================================================

func TestStore_GetHolidayEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	oncall := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0), "")
	h1 := mustEvent(t, calendar.TypeHoliday, at(1, 0, 0), at(1, 23, 59), "new year")
	h2 := mustEvent(t, calendar.TypeHoliday, at(6, 0, 0), at(6, 23, 59), "epiphany")
	require.NoError(t, store.SaveEvents(ctx, []calendar.Event{oncall, h1, h2}))

	holidays, err := store.GetHolidayEvents(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	for _, h := range holidays {
		assert.Equal(t, calendar.TypeHoliday, h.Type)
	}
}

func TestStore_GetEventsOverlappingRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inside := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0), "")
	straddling := mustEvent(t, calendar.TypeIncident, at(5, 22, 0), at(6, 2, 0), "")
	touching := mustEvent(t, calendar.TypeOnCall, at(5, 0, 0), at(6, 0, 0), "")
	outside := mustEvent(t, calendar.TypeOnCall, at(10, 9, 0), at(10, 17, 0), "")
	holiday := mustEvent(t, calendar.TypeHoliday, at(6, 0, 0), at(6, 23, 59), "")
	require.NoError(t, store.SaveEvents(ctx, []calendar.Event{inside, straddling, touching, outside, holiday}))

	// WHEN: Querying Jan 6 for billable types only
	got, err := store.GetEventsOverlappingRange(ctx, at(6, 0, 0), at(7, 0, 0),
		[]calendar.EventType{calendar.TypeOnCall, calendar.TypeIncident})
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, ev := range got {
		ids[i] = ev.ID
	}
	assert.Contains(t, ids, inside.ID)
	assert.Contains(t, ids, straddling.ID)
	assert.NotContains(t, ids, touching.ID, "an event ending exactly at the range start does not overlap")
	assert.NotContains(t, ids, outside.ID)
	assert.NotContains(t, ids, holiday.ID, "type filter should exclude holidays")

	// WHEN: Querying without a type filter
	got, err = store.GetEventsOverlappingRange(ctx, at(6, 0, 0), at(7, 0, 0), nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestStore_GetEventsOverlappingRange_ClientOffsets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN: An event submitted with a +02:00 offset. 23:00+02:00 on Jan 1
	// is 21:00 UTC, so it overlaps a UTC window inside 21:00-23:00 UTC.
	eet := time.FixedZone("EET", 2*60*60)
	ev := mustEvent(t, calendar.TypeOnCall,
		time.Date(2024, time.January, 1, 23, 0, 0, 0, eet),
		time.Date(2024, time.January, 2, 1, 0, 0, 0, eet), "offset cover")
	require.NoError(t, store.SaveEvents(ctx, []calendar.Event{ev}))

	// WHEN: Querying a UTC window fully contained in the event
	got, err := store.GetEventsOverlappingRange(ctx,
		time.Date(2024, time.January, 1, 21, 30, 0, 0, time.UTC),
		time.Date(2024, time.January, 1, 22, 30, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	// THEN: The event is found regardless of the zone it was saved in
	require.Len(t, got, 1, "offset-bearing event must match a contained UTC window")
	assert.Equal(t, ev.ID, got[0].ID)
	assert.True(t, got[0].Start.Equal(ev.Start), "instant should survive the round-trip")
}

func TestStore_GetEventsOverlappingRange_SubSecondBoundary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN: An event starting half a second past the hour
	ev := mustEvent(t, calendar.TypeIncident,
		time.Date(2025, time.January, 6, 9, 0, 0, 500_000_000, time.UTC),
		time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC), "")
	require.NoError(t, store.SaveEvents(ctx, []calendar.Event{ev}))

	// WHEN: Querying a window that ends exactly on the hour
	got, err := store.GetEventsOverlappingRange(ctx,
		time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	// THEN: 09:00:00.5 starts after the window closes, so no overlap
	assert.Empty(t, got, "sub-second start after the window must not match")

	// WHEN: Nudging the window past the fractional start
	got, err = store.GetEventsOverlappingRange(ctx,
		time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 6, 9, 0, 1, 0, time.UTC), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Start.Equal(ev.Start), "fractional seconds should round-trip")
}

// =============================================================================
// SUB-EVENT STORE
// =============================================================================

func saveSlices(t *testing.T, store *sqlite.Store, ev calendar.Event) []calendar.SubEvent {
	t.Helper()
	subs, err := calendar.Subdivide(ev, nil)
	require.NoError(t, err)
	require.NoError(t, store.SaveSubEvents(context.Background(), subs))
	return subs
}

func TestStore_SubEvents_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Friday 20:00 to Saturday 04:00 produces three differently-flagged slices.
	ev := mustEvent(t, calendar.TypeOnCall, at(10, 20, 0), at(11, 4, 0), "")
	require.NoError(t, store.SaveEvents(ctx, []calendar.Event{ev}))
	saved := saveSlices(t, store, ev)

	got, err := store.GetByParentID(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, got, len(saved))

	for i, sub := range got {
		want := saved[i]
		assert.Equal(t, want.ID, sub.ID)
		assert.Equal(t, ev.ID, sub.ParentEventID)
		assert.Equal(t, want.Type, sub.Type)
		assert.True(t, sub.Start.Equal(want.Start), "slice %d start should round-trip", i)
		assert.True(t, sub.End.Equal(want.End), "slice %d end should round-trip", i)
		assert.Equal(t, want.IsWeekday, sub.IsWeekday)
		assert.Equal(t, want.IsWeekend, sub.IsWeekend)
		assert.Equal(t, want.IsHoliday, sub.IsHoliday)
		assert.Equal(t, want.IsNightShift, sub.IsNightShift)
		assert.Equal(t, want.IsOfficeHours, sub.IsOfficeHours)
	}
}

func TestStore_SubEvents_DeleteByParentID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0), "")
	b := mustEvent(t, calendar.TypeOnCall, at(7, 9, 0), at(7, 17, 0), "")
	saveSlices(t, store, a)
	saveSlices(t, store, b)

	require.NoError(t, store.DeleteByParentID(ctx, a.ID))

	gone, err := store.GetByParentID(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := store.GetByParentID(ctx, b.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, kept)
}

func TestStore_SubEvents_DeleteByParentIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0), "")
	b := mustEvent(t, calendar.TypeOnCall, at(7, 9, 0), at(7, 17, 0), "")
	c := mustEvent(t, calendar.TypeOnCall, at(8, 9, 0), at(8, 17, 0), "")
	saveSlices(t, store, a)
	saveSlices(t, store, b)
	saveSlices(t, store, c)

	require.NoError(t, store.DeleteByParentIDs(ctx, []string{a.ID, b.ID}))

	all, err := store.GetAllSubEvents(ctx)
	require.NoError(t, err)
	for _, sub := range all {
		assert.Equal(t, c.ID, sub.ParentEventID)
	}
	assert.NotEmpty(t, all)

	require.NoError(t, store.DeleteByParentIDs(ctx, nil))
}

func TestStore_GetAllSubEvents_OrderedByStart(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	later := mustEvent(t, calendar.TypeOnCall, at(10, 9, 0), at(10, 17, 0), "")
	earlier := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0), "")
	saveSlices(t, store, later)
	saveSlices(t, store, earlier)

	all, err := store.GetAllSubEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Start.Before(all[1].Start), "slices should come back ordered by start")
}

// =============================================================================
// SERVICE INTEGRATION - The store behind the real use-case layer
// =============================================================================

func TestStore_BacksCalendarService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := calendar.NewService(store, store)

	ev, _, err := svc.CreateEvent(ctx, calendar.TypeOnCall, at(6, 8, 0), at(6, 18, 0), "day cover")
	require.NoError(t, err)

	_, report, err := svc.CreateEvent(ctx, calendar.TypeHoliday, at(6, 0, 0), at(6, 23, 59), "epiphany")
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.True(t, report.AllSucceeded())

	subs, err := store.GetByParentID(ctx, ev.ID)
	require.NoError(t, err)
	require.NotEmpty(t, subs)
	for _, sub := range subs {
		assert.True(t, sub.IsHoliday, "rippled slice %v should carry the holiday flag", sub.Start)
	}
}

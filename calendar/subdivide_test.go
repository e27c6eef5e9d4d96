package calendar_test

import (
	"testing"
	"time"

	"github.com/warp/oncall-engine/calendar"
)

func mustEvent(t *testing.T, typ calendar.EventType, start, end time.Time) calendar.Event {
	t.Helper()
	ev, err := calendar.NewEvent(typ, start, end, "")
	if err != nil {
		t.Fatalf("failed to build event: %v", err)
	}
	return ev
}

func mustSubdivide(t *testing.T, ev calendar.Event, index *calendar.HolidayIndex) []calendar.SubEvent {
	t.Helper()
	subs, err := calendar.Subdivide(ev, index)
	if err != nil {
		t.Fatalf("subdivide failed: %v", err)
	}
	return subs
}

// =============================================================================
// SLICE BOUNDARIES
// =============================================================================

func TestSubdivide_UniformInterval_SingleSlice(t *testing.T) {
	// GIVEN: Monday 09:00-17:00, entirely inside office hours
	ev := mustEvent(t, calendar.TypeOnCall, at(6, 9, 0), at(6, 17, 0))

	// WHEN: Subdividing
	subs := mustSubdivide(t, ev, nil)

	// THEN: One slice covering the full interval
	if len(subs) != 1 {
		t.Fatalf("expected 1 slice, got %d", len(subs))
	}
	s := subs[0]
	if !s.Start.Equal(ev.Start) || !s.End.Equal(ev.End) {
		t.Errorf("slice %v-%v does not cover event %v-%v", s.Start, s.End, ev.Start, ev.End)
	}
	if !s.IsWeekday || !s.IsOfficeHours || s.IsWeekend || s.IsNightShift || s.IsHoliday {
		t.Errorf("unexpected flags: %+v", s)
	}
}

func TestSubdivide_CutsAtOfficeBoundaries(t *testing.T) {
	// GIVEN: Monday 08:00-18:00, straddling both office boundaries
	ev := mustEvent(t, calendar.TypeOnCall, at(6, 8, 0), at(6, 18, 0))

	subs := mustSubdivide(t, ev, nil)

	// THEN: Three slices: before, inside, and after office hours
	if len(subs) != 3 {
		t.Fatalf("expected 3 slices, got %d: %+v", len(subs), subs)
	}
	if !subs[0].End.Equal(at(6, 9, 0)) || subs[0].IsOfficeHours {
		t.Errorf("first slice should end 09:00 outside office hours: %+v", subs[0])
	}
	if !subs[1].Start.Equal(at(6, 9, 0)) || !subs[1].End.Equal(at(6, 17, 0)) || !subs[1].IsOfficeHours {
		t.Errorf("middle slice should be 09:00-17:00 office hours: %+v", subs[1])
	}
	if !subs[2].Start.Equal(at(6, 17, 0)) || subs[2].IsOfficeHours {
		t.Errorf("last slice should start 17:00 outside office hours: %+v", subs[2])
	}
}

func TestSubdivide_OvernightWeekday_SingleNightSlice(t *testing.T) {
	// GIVEN: Monday 22:00 to Tuesday 06:00, the whole night window
	ev := mustEvent(t, calendar.TypeOnCall, at(6, 22, 0), at(7, 6, 0))

	subs := mustSubdivide(t, ev, nil)

	// THEN: Classification is constant across midnight, so one slice
	if len(subs) != 1 {
		t.Fatalf("expected 1 slice, got %d", len(subs))
	}
	if !subs[0].IsNightShift || !subs[0].IsWeekday {
		t.Errorf("expected a weekday night slice: %+v", subs[0])
	}
}

func TestSubdivide_FridayIntoSaturday(t *testing.T) {
	// GIVEN: Friday 20:00 to Saturday 04:00 (2025-01-10 is a Friday)
	ev := mustEvent(t, calendar.TypeOnCall, at(10, 20, 0), at(11, 4, 0))

	subs := mustSubdivide(t, ev, nil)

	// THEN: Cuts at 22:00 (night starts) and midnight (weekday -> weekend)
	if len(subs) != 3 {
		t.Fatalf("expected 3 slices, got %d: %+v", len(subs), subs)
	}
	if subs[0].IsNightShift || !subs[0].IsWeekday {
		t.Errorf("20:00-22:00 should be a plain weekday slice: %+v", subs[0])
	}
	if !subs[1].Start.Equal(at(10, 22, 0)) || !subs[1].IsNightShift || !subs[1].IsWeekday {
		t.Errorf("22:00-00:00 should be a weekday night slice: %+v", subs[1])
	}
	if !subs[2].Start.Equal(at(11, 0, 0)) || !subs[2].IsNightShift || !subs[2].IsWeekend {
		t.Errorf("00:00-04:00 should be a weekend night slice: %+v", subs[2])
	}
}

func TestSubdivide_CutsAtMonthBoundary(t *testing.T) {
	// GIVEN: Jan 31 22:00 to Feb 1 06:00, both weekdays (2024-01-31 is a
	// Wednesday), classification constant across midnight
	start := time.Date(2024, time.January, 31, 22, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 1, 6, 0, 0, 0, time.UTC)
	ev := mustEvent(t, calendar.TypeOnCall, start, end)

	subs := mustSubdivide(t, ev, nil)

	// THEN: The month boundary still forces a cut
	if len(subs) != 2 {
		t.Fatalf("expected 2 slices, got %d: %+v", len(subs), subs)
	}
	if !subs[0].End.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first slice should end at the month boundary: %+v", subs[0])
	}
	if !subs[0].IsNightShift || !subs[1].IsNightShift {
		t.Error("both slices are night-shift slices")
	}
	if subs[0].DurationHours() != 2 || subs[1].DurationHours() != 6 {
		t.Errorf("expected 2h + 6h split, got %vh + %vh", subs[0].DurationHours(), subs[1].DurationHours())
	}
}

// =============================================================================
// PARTITION AND DETERMINISM PROPERTIES
// =============================================================================

func TestSubdivide_PartitionSumsToEventDuration(t *testing.T) {
	events := []calendar.Event{
		mustEvent(t, calendar.TypeOnCall, at(6, 9, 30), at(6, 17, 15)),
		mustEvent(t, calendar.TypeIncident, at(10, 20, 0), at(12, 8, 0)),
		mustEvent(t, calendar.TypeOnCall, at(3, 0, 0), at(10, 0, 0)),
		mustEvent(t, calendar.TypeOnCall, at(6, 21, 45), at(7, 6, 30)),
	}

	for _, ev := range events {
		subs := mustSubdivide(t, ev, nil)

		var sum float64
		for i, s := range subs {
			sum += s.DurationHours()
			if !s.End.After(s.Start) {
				t.Errorf("zero-length slice emitted: %+v", s)
			}
			if i > 0 && !subs[i-1].End.Equal(s.Start) {
				t.Errorf("gap between slices: %v then %v", subs[i-1].End, s.Start)
			}
		}
		if sum != ev.DurationHours() {
			t.Errorf("slices sum to %vh, event is %vh", sum, ev.DurationHours())
		}
		if !subs[0].Start.Equal(ev.Start) || !subs[len(subs)-1].End.Equal(ev.End) {
			t.Error("slices do not cover the full event interval")
		}
	}
}

func TestSubdivide_Deterministic(t *testing.T) {
	ev := mustEvent(t, calendar.TypeOnCall, at(10, 20, 0), at(12, 8, 0))
	index := calendar.NewHolidayIndex([]calendar.Event{holiday(t, 11, "saturday off")})

	first := mustSubdivide(t, ev, index)
	second := mustSubdivide(t, ev, index)

	if len(first) != len(second) {
		t.Fatalf("slice count differs between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		// Generated ids differ; boundaries and flags must not.
		if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
			t.Errorf("boundary drift at slice %d: %v-%v vs %v-%v", i, a.Start, a.End, b.Start, b.End)
		}
		if a.IsWeekday != b.IsWeekday || a.IsWeekend != b.IsWeekend ||
			a.IsHoliday != b.IsHoliday || a.IsNightShift != b.IsNightShift ||
			a.IsOfficeHours != b.IsOfficeHours {
			t.Errorf("flag drift at slice %d", i)
		}
	}
}

// =============================================================================
// HOLIDAY FLAG RESOLUTION
// =============================================================================

func TestSubdivide_HolidayFlagFromIndex(t *testing.T) {
	// GIVEN: An on-call shift on a day declared a holiday
	ev := mustEvent(t, calendar.TypeOnCall, at(1, 8, 0), at(1, 20, 0))
	index := calendar.NewHolidayIndex([]calendar.Event{holiday(t, 1, "new year")})

	subs := mustSubdivide(t, ev, index)

	for _, s := range subs {
		if !s.IsHoliday {
			t.Errorf("slice starting %v should carry the holiday flag", s.Start)
		}
	}
}

func TestSubdivide_NilIndexMeansNoHolidays(t *testing.T) {
	ev := mustEvent(t, calendar.TypeOnCall, at(1, 8, 0), at(1, 20, 0))
	for _, s := range mustSubdivide(t, ev, nil) {
		if s.IsHoliday {
			t.Errorf("no holiday flag expected without an index: %+v", s)
		}
	}
}

func TestSubdivide_InvalidEventRejected(t *testing.T) {
	ev := calendar.Event{ID: "bad", Type: calendar.TypeOnCall, Start: at(6, 17, 0), End: at(6, 9, 0)}
	if _, err := calendar.Subdivide(ev, nil); err == nil {
		t.Fatal("expected an error for an inverted interval")
	}
}

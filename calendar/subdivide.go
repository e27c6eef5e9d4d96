/*
subdivide.go - Event subdivision into classified slices

PURPOSE:
  Deterministically partitions a parent event's [start, end) interval into
  maximal sub-intervals within which the weekday/weekend, office-hours, and
  night-shift classifications are each constant. The holiday flag is then
  resolved per slice from a HolidayIndex.

ALGORITHM:
  Walk the interval from start, advancing to the next top-of-hour (or end,
  whichever is first). Classification can only change at an hour or day
  boundary, so each segment between consecutive cut points carries a single
  classification tuple. Adjacent segments with equal tuples merge into one
  slice; a cut is additionally forced at calendar-month boundaries so that
  every slice belongs to exactly one month. A zero-length tail is never
  emitted.

PROPERTIES:
  - Partition: slice durations sum exactly to the event duration
  - Determinism: same event + same holiday set => same boundaries and flags
  - Every event type is subdivided, holidays included; whether slices are
    billable is decided by the compensation package, not here

SEE ALSO:
  - clock.go: The classification rules
  - holiday.go: Holiday flag resolution
  - ripple.go: Regeneration after holiday creation
*/
package calendar

import "time"

// classification is the tuple that defines slice boundaries.
type classification struct {
	weekend bool
	night   bool
	office  bool
}

func classify(t time.Time) classification {
	return classification{
		weekend: IsWeekend(t),
		night:   IsNightShift(t),
		office:  IsOfficeHours(t),
	}
}

// nextHour returns the next top-of-hour strictly after t.
func nextHour(t time.Time) time.Time {
	truncated := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return truncated.Add(time.Hour)
}

// Subdivide partitions the event into classified sub-events. The index
// supplies holiday containment; pass an index built from all holidays except
// the event itself (see HolidayIndex.Without). A nil index means no holidays.
func Subdivide(ev Event, index *HolidayIndex) ([]SubEvent, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if index == nil {
		index = NewHolidayIndex(nil)
	}

	var subs []SubEvent
	runStart := ev.Start
	runClass := classify(ev.Start)

	cursor := ev.Start
	for cursor.Before(ev.End) {
		next := nextHour(cursor)
		if next.After(ev.End) {
			next = ev.End
		}
		// A cut is also forced at a month boundary: monthly aggregation
		// assigns whole slices to the month their start falls in, so a
		// slice must never straddle two months.
		if c := classify(cursor); c != runClass || !SameMonth(cursor, runStart) {
			sub, err := NewSubEvent(ev, runStart, cursor, index.Contains(runStart))
			if err != nil {
				return nil, err
			}
			subs = append(subs, sub)
			runStart = cursor
			runClass = c
		}
		cursor = next
	}

	// Closing slice. runStart < end always holds here because end > start.
	sub, err := NewSubEvent(ev, runStart, ev.End, index.Contains(runStart))
	if err != nil {
		return nil, err
	}
	return append(subs, sub), nil
}

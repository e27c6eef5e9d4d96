/*
holiday.go - Holiday containment index

PURPOSE:
  Answers whether an instant falls inside any holiday event's interval.
  Used by the subdivider to stamp the IsHoliday flag on slices.

CACHING:
  Lookups are memoized by (instant, holiday-set fingerprint). The fingerprint
  is the sorted list of holiday ids, so two indexes over the same set share
  key space. An index is built per calculation or ripple pass and discarded
  afterwards; there is no process-lifetime cache to invalidate, and growth is
  bounded by the slices of a single pass.

CONTRACT:
  Containment is inclusive at both ends: start <= instant <= end.
  An empty holiday set answers false for every instant.

SEE ALSO:
  - subdivide.go: The only production consumer
  - ripple.go: Rebuilds the index after a holiday is created
*/
package calendar

import (
	"sort"
	"strings"
	"time"
)

// HolidayIndex answers holiday containment queries over a fixed snapshot of
// holiday events. Create a fresh index whenever the holiday set changes;
// the index never observes mutations.
type HolidayIndex struct {
	holidays    []Event
	fingerprint string
	memo        map[string]bool
}

// NewHolidayIndex builds an index over the given holiday snapshot.
// Non-holiday events in the input are ignored.
func NewHolidayIndex(holidays []Event) *HolidayIndex {
	kept := make([]Event, 0, len(holidays))
	ids := make([]string, 0, len(holidays))
	for _, h := range holidays {
		if h.Type != TypeHoliday {
			continue
		}
		kept = append(kept, h)
		ids = append(ids, h.ID)
	}
	sort.Strings(ids)
	return &HolidayIndex{
		holidays:    kept,
		fingerprint: strings.Join(ids, ","),
		memo:        make(map[string]bool),
	}
}

// Fingerprint identifies the holiday set this index was built from.
func (ix *HolidayIndex) Fingerprint() string { return ix.fingerprint }

// Contains reports whether t lies within [start, end] of any holiday.
func (ix *HolidayIndex) Contains(t time.Time) bool {
	key := t.Format(time.RFC3339Nano) + "|" + ix.fingerprint
	if hit, ok := ix.memo[key]; ok {
		return hit
	}
	contained := false
	for _, h := range ix.holidays {
		if !t.Before(h.Start) && !t.After(h.End) {
			contained = true
			break
		}
	}
	ix.memo[key] = contained
	return contained
}

// Without returns a new index excluding the holiday with the given id.
// Used so a holiday event being subdivided does not classify itself.
func (ix *HolidayIndex) Without(eventID string) *HolidayIndex {
	kept := make([]Event, 0, len(ix.holidays))
	for _, h := range ix.holidays {
		if h.ID != eventID {
			kept = append(kept, h)
		}
	}
	return NewHolidayIndex(kept)
}

/*
ripple.go - Holiday ripple effect

PURPOSE:
  When a holiday is created, on-call and incident events overlapping its
  range still carry slices that were classified before the holiday existed.
  The ripple pass deletes and regenerates those slices against the updated
  holiday set so overlapping slices correctly carry IsHoliday = true.

SEMANTICS:
  Best-effort, not transactional. Each parent's delete + regenerate + save
  sequence is independent; a failure on one parent is recorded and logged,
  and processing continues with the rest. A failed parent keeps stale
  slices until the next edit, ripple, or sweeper run.

REPORTING:
  Instead of only logging, the pass returns a RippleReport with a per-parent
  outcome so callers can decide whether to retry failures.

SEE ALSO:
  - service.go: regenerate, the per-parent sequence
  - api/sweeper.go: Scheduled retry of parents left stale
*/
package calendar

import (
	"context"
	"log"
)

// =============================================================================
// RIPPLE REPORT
// =============================================================================

// RippleOutcome records the result of regenerating one parent event.
type RippleOutcome struct {
	EventID string    `json:"eventId"`
	Type    EventType `json:"type"`
	Err     error     `json:"-"`
	Reason  string    `json:"reason,omitempty"`
}

// Succeeded reports whether this parent was regenerated.
func (o RippleOutcome) Succeeded() bool { return o.Err == nil }

// RippleReport aggregates the outcomes of one ripple pass.
type RippleReport struct {
	HolidayID string          `json:"holidayId"`
	Outcomes  []RippleOutcome `json:"outcomes"`
}

// Failed returns the outcomes that did not succeed.
func (r RippleReport) Failed() []RippleOutcome {
	var failed []RippleOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// AllSucceeded reports whether every overlapping parent was regenerated.
func (r RippleReport) AllSucceeded() bool { return len(r.Failed()) == 0 }

// =============================================================================
// RIPPLE PASS
// =============================================================================

// Ripple regenerates the slices of every on-call/incident event overlapping
// the given holiday's range, using the holiday set as currently stored
// (which includes the new holiday). Call after the holiday has been saved.
func (s *Service) Ripple(ctx context.Context, holiday Event) RippleReport {
	report := RippleReport{HolidayID: holiday.ID}

	parents, err := s.events.GetEventsOverlappingRange(ctx, holiday.Start, holiday.End,
		[]EventType{TypeOnCall, TypeIncident})
	if err != nil {
		log.Printf("[Ripple] failed to query overlapping events for holiday %s: %v", holiday.ID, err)
		report.Outcomes = append(report.Outcomes, RippleOutcome{
			EventID: holiday.ID, Type: TypeHoliday, Err: err, Reason: err.Error(),
		})
		return report
	}

	for _, parent := range parents {
		outcome := RippleOutcome{EventID: parent.ID, Type: parent.Type}
		if err := s.regenerate(ctx, parent); err != nil {
			outcome.Err = err
			outcome.Reason = err.Error()
			log.Printf("[Ripple] regeneration failed for event %s: %v", parent.ID, err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if failed := report.Failed(); len(failed) > 0 {
		log.Printf("[Ripple] holiday %s: %d/%d parents regenerated",
			holiday.ID, len(report.Outcomes)-len(failed), len(report.Outcomes))
	}
	return report
}

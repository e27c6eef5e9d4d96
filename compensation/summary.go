/*
summary.go - Per-event compensation facade

PURPOSE:
  Produces presentation-ready summaries: hours by category, line-item
  detail, the hours chart, and per-month partial breakdowns for events
  straddling a month boundary. Loads persisted slices and re-derives them
  on the fly when the stored set is incomplete.

DEGRADE-TO-EMPTY POLICY:
  Any failure loading persisted slices (or the holiday set needed to
  re-derive them) is caught and logged, and a zero-valued summary is
  returned instead. Presentation code always receives a well-formed
  summary. This is deliberately different from the propagate-by-default
  policy of the calendar service.

CROSS-MONTH SPLITTING:
  An event whose start and end fall in different months gets one partial
  breakdown per month it touches. The event interval is clamped to the
  month bounds and slices are assigned to the month their start falls in.

SEE ALSO:
  - service.go: The aggregation primitives
  - calendar/subdivide.go: On-the-fly re-derivation
*/
package compensation

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/oncall-engine/calendar"
)

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// LineItem is one category's compensation detail for an event.
type LineItem struct {
	Category Category
	Hours    decimal.Decimal
	Amount   decimal.Decimal
}

// HoursChart is the presentation aggregation for the shift-type chart.
// Night hours are folded into the weekday/weekend buckets as well, so the
// buckets can sum to more than the event's duration. Do not reconcile this
// against Breakdown; the two answer different questions.
type HoursChart struct {
	Weekday decimal.Decimal
	Weekend decimal.Decimal
	Night   decimal.Decimal
	Holiday decimal.Decimal
}

// MonthSlice is the partial breakdown of an event for one calendar month.
type MonthSlice struct {
	Year      int
	Month     time.Month
	Breakdown Breakdown
	Amount    decimal.Decimal
}

// Summary is the full per-event result.
type Summary struct {
	EventID   string
	Type      calendar.EventType
	Hours     Hours
	Breakdown Breakdown
	Chart     HoursChart
	Lines     []LineItem
	Amount    decimal.Decimal
	Months    []MonthSlice // populated only for cross-month events
}

// =============================================================================
// EVENT SERVICE - Facade over stores + aggregation
// =============================================================================

// EventService computes per-event and per-month summaries from persisted
// slices, re-deriving them when the stored set is incomplete.
type EventService struct {
	events calendar.EventStore
	subs   calendar.SubEventStore
	calc   *Service
}

func NewEventService(events calendar.EventStore, subs calendar.SubEventStore, calc *Service) *EventService {
	return &EventService{events: events, subs: subs, calc: calc}
}

// Summary returns the compensation summary for one event. Slice-loading
// failures degrade to a zero summary; a missing event is an error.
func (es *EventService) Summary(ctx context.Context, eventID string) (Summary, error) {
	ev, err := es.events.GetEvent(ctx, eventID)
	if err != nil {
		return Summary{}, &calendar.ApplicationError{Op: "compensation_summary", EventID: eventID, Err: err}
	}
	if ev == nil {
		return Summary{}, &calendar.NotFoundError{EventID: eventID}
	}

	subs, ok := es.loadSlices(ctx, *ev)
	if !ok {
		return Summary{EventID: ev.ID, Type: ev.Type}, nil
	}
	return es.summarize(*ev, subs), nil
}

// MonthSummaries returns one summary per billable event touching ref's
// month, each restricted to the slices starting in that month. Events that
// straddle the month boundary are clamped to it.
func (es *EventService) MonthSummaries(ctx context.Context, ref time.Time) ([]Summary, error) {
	from := calendar.StartOfMonth(ref)
	to := calendar.StartOfNextMonth(ref)

	events, err := es.events.GetEventsOverlappingRange(ctx, from, to,
		[]calendar.EventType{calendar.TypeOnCall, calendar.TypeIncident})
	if err != nil {
		return nil, &calendar.ApplicationError{Op: "month_summaries", Err: err}
	}

	summaries := make([]Summary, 0, len(events))
	for _, ev := range events {
		clipped := clampToMonth(ev, from, to)
		subs, ok := es.loadSlices(ctx, ev)
		if !ok {
			summaries = append(summaries, Summary{EventID: ev.ID, Type: ev.Type})
			continue
		}
		summaries = append(summaries, es.summarize(clipped, FilterMonth(subs, ref)))
	}
	return summaries, nil
}

// MonthlyTotal is the scalar hour-equivalent total for ref's month across
// all persisted slices.
func (es *EventService) MonthlyTotal(ctx context.Context, ref time.Time) (decimal.Decimal, error) {
	subs, err := es.subs.GetAllSubEvents(ctx)
	if err != nil {
		log.Printf("[Compensation] loading all sub-events failed, degrading to zero: %v", err)
		return decimal.Zero, nil
	}
	return es.calc.MonthlyCompensation(subs, ref), nil
}

// =============================================================================
// INTERNAL
// =============================================================================

// loadSlices fetches the persisted slices for ev, re-deriving them when
// none are stored. Returns ok=false when the degrade-to-empty policy fires.
func (es *EventService) loadSlices(ctx context.Context, ev calendar.Event) ([]calendar.SubEvent, bool) {
	subs, err := es.subs.GetByParentID(ctx, ev.ID)
	if err != nil {
		log.Printf("[Compensation] loading sub-events for %s failed, degrading to zero: %v", ev.ID, err)
		return nil, false
	}
	if len(subs) > 0 {
		return subs, true
	}

	// Incomplete data: re-derive from the parent against the stored holidays.
	holidays, err := es.events.GetHolidayEvents(ctx)
	if err != nil {
		log.Printf("[Compensation] loading holidays for %s failed, degrading to zero: %v", ev.ID, err)
		return nil, false
	}
	derived, err := calendar.Subdivide(ev, calendar.NewHolidayIndex(holidays).Without(ev.ID))
	if err != nil {
		log.Printf("[Compensation] re-deriving sub-events for %s failed, degrading to zero: %v", ev.ID, err)
		return nil, false
	}
	return derived, true
}

func (es *EventService) summarize(ev calendar.Event, subs []calendar.SubEvent) Summary {
	s := Summary{
		EventID:   ev.ID,
		Type:      ev.Type,
		Hours:     es.calc.CategoryHours(subs),
		Breakdown: es.calc.Breakdown(subs),
		Chart:     chartOf(subs),
		Lines:     es.lineItems(subs),
		Amount:    es.calc.Amount(subs),
	}

	if !calendar.SameMonth(ev.Start, ev.End) {
		s.Months = es.monthSlices(ev, subs)
	}
	return s
}

func (es *EventService) lineItems(subs []calendar.SubEvent) []LineItem {
	hours := map[Category]decimal.Decimal{}
	amounts := map[Category]decimal.Decimal{}
	for _, sub := range subs {
		cat := CategoryOf(sub)
		h := decimal.NewFromFloat(sub.DurationHours())
		hours[cat] = hours[cat].Add(h)
		amounts[cat] = amounts[cat].Add(h.Mul(es.calc.Rates().HourlyRate(sub)))
	}

	var lines []LineItem
	for _, cat := range []Category{CategoryRegular, CategoryWeekend, CategoryNightShift, CategoryHoliday} {
		if h, ok := hours[cat]; ok && !h.IsZero() {
			lines = append(lines, LineItem{Category: cat, Hours: h, Amount: amounts[cat]})
		}
	}
	return lines
}

// monthSlices produces one partial breakdown per month the event touches.
func (es *EventService) monthSlices(ev calendar.Event, subs []calendar.SubEvent) []MonthSlice {
	var slices []MonthSlice
	for cursor := calendar.StartOfMonth(ev.Start); cursor.Before(ev.End); cursor = calendar.StartOfNextMonth(cursor) {
		monthSubs := FilterMonth(subs, cursor)
		if len(monthSubs) == 0 {
			continue
		}
		slices = append(slices, MonthSlice{
			Year:      cursor.Year(),
			Month:     cursor.Month(),
			Breakdown: es.calc.Breakdown(monthSubs),
			Amount:    es.calc.Amount(monthSubs),
		})
	}
	return slices
}

// chartOf builds the shift-type chart. Night hours land in their own bucket
// AND in the weekday/weekend bucket of the day they fall on.
func chartOf(subs []calendar.SubEvent) HoursChart {
	var c HoursChart
	for _, sub := range subs {
		h := decimal.NewFromFloat(sub.DurationHours())
		if sub.IsWeekend {
			c.Weekend = c.Weekend.Add(h)
		} else {
			c.Weekday = c.Weekday.Add(h)
		}
		if sub.IsNightShift {
			c.Night = c.Night.Add(h)
		}
		if sub.IsHoliday {
			c.Holiday = c.Holiday.Add(h)
		}
	}
	return c
}

// clampToMonth clips an event's interval to [from, to) for month-scoped
// presentation. The clipped copy keeps the original id.
func clampToMonth(ev calendar.Event, from, to time.Time) calendar.Event {
	clipped := ev
	if clipped.Start.Before(from) {
		clipped.Start = from
	}
	if clipped.End.After(to) {
		clipped.End = to
	}
	return clipped
}

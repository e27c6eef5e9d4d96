/*
service.go - Aggregation over slice collections

PURPOSE:
  The precedence-resolved aggregation path: scalar hour-equivalent totals,
  calendar-month restriction, categorized breakdowns, and euro amounts.
  Every slice is counted exactly once at its highest applicable category.

DETERMINISM:
  Pure decimal arithmetic over the input slices and the rate table. No I/O,
  no randomness. An empty input yields all-zero output.

SEE ALSO:
  - rates.go: Category resolution and the rate table
  - summary.go: Per-event facade built on top of this service
*/
package compensation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/oncall-engine/calendar"
)

// Service applies a rate table to slice collections.
type Service struct {
	rates RateTable
}

// NewService creates a service over the production rate table.
func NewService() *Service { return &Service{rates: DefaultRates()} }

// NewServiceWithRates creates a service over a custom rate table.
func NewServiceWithRates(rates RateTable) *Service { return &Service{rates: rates} }

// Rates returns the table in effect.
func (s *Service) Rates() RateTable { return s.rates }

// =============================================================================
// BREAKDOWN - Hour-equivalents by category
// =============================================================================

// Breakdown is the precedence-resolved hour-equivalent figures. Each field
// is the weighted hours of slices resolved to that category; Total is their
// sum and always equals the scalar TotalCompensation.
type Breakdown struct {
	Regular    decimal.Decimal
	Weekend    decimal.Decimal
	NightShift decimal.Decimal
	Holiday    decimal.Decimal
	Total      decimal.Decimal
}

// Hours is the raw (unweighted) hours per precedence-resolved category.
type Hours struct {
	Regular    decimal.Decimal
	Weekend    decimal.Decimal
	NightShift decimal.Decimal
	Holiday    decimal.Decimal
	Total      decimal.Decimal
}

// =============================================================================
// OPERATIONS
// =============================================================================

// TotalCompensation sums the hour-equivalent value of all slices, each
// counted once at its highest applicable category weight.
func (s *Service) TotalCompensation(subs []calendar.SubEvent) decimal.Decimal {
	return s.Breakdown(subs).Total
}

// MonthlyCompensation restricts TotalCompensation to slices whose start
// falls in the same calendar month as ref.
func (s *Service) MonthlyCompensation(subs []calendar.SubEvent, ref time.Time) decimal.Decimal {
	return s.TotalCompensation(FilterMonth(subs, ref))
}

// Breakdown categorizes all slices by precedence and returns the weighted
// hour-equivalent per category.
func (s *Service) Breakdown(subs []calendar.SubEvent) Breakdown {
	var b Breakdown
	for _, sub := range subs {
		hours := decimal.NewFromFloat(sub.DurationHours())
		cat := CategoryOf(sub)
		weighted := hours.Mul(s.rates.Weight(cat))
		switch cat {
		case CategoryHoliday:
			b.Holiday = b.Holiday.Add(weighted)
		case CategoryNightShift:
			b.NightShift = b.NightShift.Add(weighted)
		case CategoryWeekend:
			b.Weekend = b.Weekend.Add(weighted)
		default:
			b.Regular = b.Regular.Add(weighted)
		}
		b.Total = b.Total.Add(weighted)
	}
	return b
}

// CategoryHours returns the raw hours per precedence-resolved category.
func (s *Service) CategoryHours(subs []calendar.SubEvent) Hours {
	var h Hours
	for _, sub := range subs {
		hours := decimal.NewFromFloat(sub.DurationHours())
		switch CategoryOf(sub) {
		case CategoryHoliday:
			h.Holiday = h.Holiday.Add(hours)
		case CategoryNightShift:
			h.NightShift = h.NightShift.Add(hours)
		case CategoryWeekend:
			h.Weekend = h.Weekend.Add(hours)
		default:
			h.Regular = h.Regular.Add(hours)
		}
		h.Total = h.Total.Add(hours)
	}
	return h
}

// Amount returns the euro total across all slices: hours times the slice's
// hourly rate, holiday override and office-hours exclusion included.
func (s *Service) Amount(subs []calendar.SubEvent) decimal.Decimal {
	total := decimal.Zero
	for _, sub := range subs {
		hours := decimal.NewFromFloat(sub.DurationHours())
		total = total.Add(hours.Mul(s.rates.HourlyRate(sub)))
	}
	return total
}

// FilterMonth returns the slices whose start falls in ref's calendar month.
func FilterMonth(subs []calendar.SubEvent, ref time.Time) []calendar.SubEvent {
	var kept []calendar.SubEvent
	for _, sub := range subs {
		if calendar.SameMonth(sub.Start, ref) {
			kept = append(kept, sub)
		}
	}
	return kept
}

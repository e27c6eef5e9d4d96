/*
Package compensation prices classified calendar slices against a rate table.

PURPOSE:
  Takes the sub-events produced by the calendar package and turns them into
  money and hour-equivalent figures: per-category totals, monthly restricted
  totals, categorized breakdowns, and presentation-ready per-event summaries.

TWO AGGREGATION PATHS (kept deliberately separate):
  1. Breakdown / totals (service.go): precedence-resolved, each slice counted
     exactly once at its highest applicable category. Sums match the money.
  2. Hours chart (summary.go): folds night hours into the weekday/weekend
     buckets as well, so displayed category hours can exceed the event's raw
     duration. That double counting is intentional for the shift-type chart
     and must never be merged with path 1.

PRECEDENCE:
  holiday > night-shift > weekend > weekday.

KEY CONCEPTS IN THIS FILE (rates.go):
  - RateTable: The fixed euro rates and multipliers
  - Category: Precedence-resolved slice category
  - Hour-equivalent weights used by the scalar totals

SEE ALSO:
  - service.go: Aggregation over slice collections
  - summary.go: Per-event facade with cross-month splitting
*/
package compensation

import (
	"github.com/shopspring/decimal"

	"github.com/warp/oncall-engine/calendar"
)

// =============================================================================
// CATEGORY - Precedence-resolved slice classification
// =============================================================================

type Category string

const (
	CategoryRegular    Category = "regular"
	CategoryWeekend    Category = "weekend"
	CategoryNightShift Category = "nightShift"
	CategoryHoliday    Category = "holiday"
)

// CategoryOf resolves a slice to exactly one category, highest precedence
// first: holiday > night-shift > weekend > weekday.
func CategoryOf(sub calendar.SubEvent) Category {
	switch {
	case sub.IsHoliday:
		return CategoryHoliday
	case sub.IsNightShift:
		return CategoryNightShift
	case sub.IsWeekend:
		return CategoryWeekend
	default:
		return CategoryRegular
	}
}

// =============================================================================
// RATE TABLE - Compile-time constants, not user input
// =============================================================================

// RateTable holds the euro rates and multipliers applied to slices.
type RateTable struct {
	OnCallWeekday decimal.Decimal // per hour, outside office hours
	OnCallWeekend decimal.Decimal // per hour
	IncidentBase  decimal.Decimal // per hour, before multipliers

	IncidentWeekday decimal.Decimal // multiplier on IncidentBase
	IncidentWeekend decimal.Decimal // multiplier on IncidentBase
	NightBonus      decimal.Decimal // additional multiplier, incidents only

	// Hour-equivalent weights for the scalar totals.
	WeightRegular    decimal.Decimal
	WeightWeekend    decimal.Decimal
	WeightNightShift decimal.Decimal
	WeightHoliday    decimal.Decimal
}

// DefaultRates returns the production rate table.
func DefaultRates() RateTable {
	return RateTable{
		OnCallWeekday: decimal.RequireFromString("3.90"),
		OnCallWeekend: decimal.RequireFromString("7.34"),
		IncidentBase:  decimal.RequireFromString("33.50"),

		IncidentWeekday: decimal.RequireFromString("1.8"),
		IncidentWeekend: decimal.RequireFromString("2.0"),
		NightBonus:      decimal.RequireFromString("1.4"),

		WeightRegular:    decimal.RequireFromString("1.0"),
		WeightWeekend:    decimal.RequireFromString("2.0"),
		WeightNightShift: decimal.RequireFromString("1.5"),
		WeightHoliday:    decimal.RequireFromString("2.5"),
	}
}

// Weight returns the hour-equivalent weight for a category.
func (r RateTable) Weight(c Category) decimal.Decimal {
	switch c {
	case CategoryHoliday:
		return r.WeightHoliday
	case CategoryNightShift:
		return r.WeightNightShift
	case CategoryWeekend:
		return r.WeightWeekend
	default:
		return r.WeightRegular
	}
}

// HourlyRate returns the euro rate for one slice. Holiday slices take the
// highest applicable category rate instead of the plain weekday/weekend one.
// Office-hours on-call is non-billable.
func (r RateTable) HourlyRate(sub calendar.SubEvent) decimal.Decimal {
	switch sub.Type {
	case calendar.TypeIncident:
		base := r.IncidentBase.Mul(r.IncidentWeekday)
		if sub.IsWeekend || sub.IsHoliday {
			base = r.IncidentBase.Mul(r.IncidentWeekend)
		}
		if sub.IsNightShift {
			base = base.Mul(r.NightBonus)
		}
		return base

	case calendar.TypeOnCall:
		if sub.IsHoliday || sub.IsWeekend {
			return r.OnCallWeekend
		}
		if sub.IsOfficeHours {
			return decimal.Zero
		}
		return r.OnCallWeekday
	}

	// Holiday-type events carry no compensation of their own.
	return decimal.Zero
}

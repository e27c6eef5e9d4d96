/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SERIALIZATION:
  Instants are ISO-8601 (RFC 3339) strings. Monetary and hour figures are
  decimals rendered as JSON numbers via float64; the engine itself keeps
  exact decimals end to end.

SEE ALSO:
  - handlers.go: Uses these types
  - compensation/summary.go: The domain shapes these mirror
*/
package api

import (
	"time"

	"github.com/warp/oncall-engine/calendar"
	"github.com/warp/oncall-engine/compensation"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventDTO represents a parent event in API responses.
type EventDTO struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
	Title string `json:"title,omitempty"`
}

// CreateEventRequest is the request to create an event.
type CreateEventRequest struct {
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
	Title string `json:"title"`
}

// UpdateEventRequest is the request to replace an event's interval/title.
type UpdateEventRequest struct {
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
	Title string `json:"title"`
}

// SubEventDTO represents a classified slice in API responses.
type SubEventDTO struct {
	ID            string `json:"id"`
	ParentEventID string `json:"parentEventId"`
	Type          string `json:"type"`
	Start         string `json:"start"`
	End           string `json:"end"`
	IsWeekday     bool   `json:"isWeekday"`
	IsWeekend     bool   `json:"isWeekend"`
	IsHoliday     bool   `json:"isHoliday"`
	IsNightShift  bool   `json:"isNightShift"`
	IsOfficeHours bool   `json:"isOfficeHours"`
}

// CreateEventResponse wraps a created event with the ripple report that a
// holiday creation produces.
type CreateEventResponse struct {
	Event  EventDTO         `json:"event"`
	Ripple *RippleReportDTO `json:"ripple,omitempty"`
}

// RippleReportDTO summarizes a holiday ripple pass.
type RippleReportDTO struct {
	HolidayID string             `json:"holidayId"`
	Outcomes  []RippleOutcomeDTO `json:"outcomes"`
}

type RippleOutcomeDTO struct {
	EventID   string `json:"eventId"`
	Type      string `json:"type"`
	Succeeded bool   `json:"succeeded"`
	Reason    string `json:"reason,omitempty"`
}

// =============================================================================
// COMPENSATION TYPES
// =============================================================================

// BreakdownDTO is the precedence-resolved hour-equivalent breakdown.
type BreakdownDTO struct {
	Regular    float64 `json:"regular"`
	Weekend    float64 `json:"weekend"`
	NightShift float64 `json:"nightShift"`
	Holiday    float64 `json:"holiday"`
	Total      float64 `json:"total"`
}

// HoursChartDTO is the shift-type chart aggregation. Buckets overlap by
// design; do not expect them to sum to the event duration.
type HoursChartDTO struct {
	Weekday float64 `json:"weekday"`
	Weekend float64 `json:"weekend"`
	Night   float64 `json:"night"`
	Holiday float64 `json:"holiday"`
}

type LineItemDTO struct {
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
	Amount   float64 `json:"amount"`
}

type MonthSliceDTO struct {
	Year      int          `json:"year"`
	Month     int          `json:"month"`
	Breakdown BreakdownDTO `json:"breakdown"`
	Amount    float64      `json:"amount"`
}

// SummaryDTO is the full per-event compensation summary.
type SummaryDTO struct {
	EventID   string          `json:"eventId"`
	Type      string          `json:"type"`
	Hours     BreakdownDTO    `json:"hours"`
	Breakdown BreakdownDTO    `json:"breakdown"`
	Chart     HoursChartDTO   `json:"chart"`
	Lines     []LineItemDTO   `json:"lines"`
	Amount    float64         `json:"amount"`
	Months    []MonthSliceDTO `json:"months,omitempty"`
}

// MonthlyCompensationDTO is the month-level rollup.
type MonthlyCompensationDTO struct {
	Month     string       `json:"month"`
	Total     float64      `json:"total"`
	Summaries []SummaryDTO `json:"summaries"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEventDTO(ev calendar.Event) EventDTO {
	return EventDTO{
		ID:    ev.ID,
		Type:  string(ev.Type),
		Start: ev.Start.Format(time.RFC3339),
		End:   ev.End.Format(time.RFC3339),
		Title: ev.Title,
	}
}

func toSubEventDTO(sub calendar.SubEvent) SubEventDTO {
	return SubEventDTO{
		ID:            sub.ID,
		ParentEventID: sub.ParentEventID,
		Type:          string(sub.Type),
		Start:         sub.Start.Format(time.RFC3339),
		End:           sub.End.Format(time.RFC3339),
		IsWeekday:     sub.IsWeekday,
		IsWeekend:     sub.IsWeekend,
		IsHoliday:     sub.IsHoliday,
		IsNightShift:  sub.IsNightShift,
		IsOfficeHours: sub.IsOfficeHours,
	}
}

func toRippleReportDTO(report calendar.RippleReport) RippleReportDTO {
	dto := RippleReportDTO{HolidayID: report.HolidayID}
	for _, o := range report.Outcomes {
		dto.Outcomes = append(dto.Outcomes, RippleOutcomeDTO{
			EventID:   o.EventID,
			Type:      string(o.Type),
			Succeeded: o.Succeeded(),
			Reason:    o.Reason,
		})
	}
	return dto
}

func toBreakdownDTO(b compensation.Breakdown) BreakdownDTO {
	return BreakdownDTO{
		Regular:    b.Regular.InexactFloat64(),
		Weekend:    b.Weekend.InexactFloat64(),
		NightShift: b.NightShift.InexactFloat64(),
		Holiday:    b.Holiday.InexactFloat64(),
		Total:      b.Total.InexactFloat64(),
	}
}

func toHoursDTO(h compensation.Hours) BreakdownDTO {
	return BreakdownDTO{
		Regular:    h.Regular.InexactFloat64(),
		Weekend:    h.Weekend.InexactFloat64(),
		NightShift: h.NightShift.InexactFloat64(),
		Holiday:    h.Holiday.InexactFloat64(),
		Total:      h.Total.InexactFloat64(),
	}
}

func toSummaryDTO(s compensation.Summary) SummaryDTO {
	dto := SummaryDTO{
		EventID:   s.EventID,
		Type:      string(s.Type),
		Hours:     toHoursDTO(s.Hours),
		Breakdown: toBreakdownDTO(s.Breakdown),
		Chart: HoursChartDTO{
			Weekday: s.Chart.Weekday.InexactFloat64(),
			Weekend: s.Chart.Weekend.InexactFloat64(),
			Night:   s.Chart.Night.InexactFloat64(),
			Holiday: s.Chart.Holiday.InexactFloat64(),
		},
		Amount: s.Amount.InexactFloat64(),
	}
	for _, l := range s.Lines {
		dto.Lines = append(dto.Lines, LineItemDTO{
			Category: string(l.Category),
			Hours:    l.Hours.InexactFloat64(),
			Amount:   l.Amount.InexactFloat64(),
		})
	}
	for _, m := range s.Months {
		dto.Months = append(dto.Months, MonthSliceDTO{
			Year:      m.Year,
			Month:     int(m.Month),
			Breakdown: toBreakdownDTO(m.Breakdown),
			Amount:    m.Amount.InexactFloat64(),
		})
	}
	return dto
}

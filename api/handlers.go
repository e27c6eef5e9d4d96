/*
handlers.go - HTTP API handlers for the on-call calendar

PURPOSE:
  Exposes the calendar engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the calendar and compensation
  services.

ENDPOINTS:
  Events:
    GET    /api/events                      List all events
    POST   /api/events                      Create event (holiday creation ripples)
    GET    /api/events/{id}                 Get one event
    PUT    /api/events/{id}                 Update event (regenerates slices)
    DELETE /api/events/{id}                 Delete event (cascades slices)
    GET    /api/events/{id}/subevents       List an event's slices
    GET    /api/events/{id}/compensation    Per-event compensation summary

  Compensation:
    GET    /api/compensation/monthly?month=2024-01  Month rollup

  Calendar:
    GET    /api/calendar/export.ics?from=..&to=..   iCal export

  Admin:
    POST   /api/admin/delete-month          Bulk delete a month's events
    POST   /api/admin/sweep                 Run the repair sweep now

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Event not found
  - 500: Internal errors

MIRRORING:
  When a CalDAV mirror is configured, event writes are pushed to it after
  the local write succeeds. Push failures are logged and ignored; the
  local database is the system of record.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/go-chi/chi/v5"

	"github.com/warp/oncall-engine/calendar"
	"github.com/warp/oncall-engine/compensation"
	caldavstore "github.com/warp/oncall-engine/store/caldav"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Calendar *calendar.Service
	Comp     *compensation.EventService
	Sweeper  *Sweeper
	Mirror   *caldavstore.Mirror // nil when not configured
}

// NewHandler creates a new handler.
func NewHandler(cal *calendar.Service, comp *compensation.EventService, sweeper *Sweeper, mirror *caldavstore.Mirror) *Handler {
	return &Handler{Calendar: cal, Comp: comp, Sweeper: sweeper, Mirror: mirror}
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// ListEvents returns all events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Calendar.EventStore().GetAllEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}

	dtos := make([]EventDTO, len(events))
	for i, ev := range events {
		dtos[i] = toEventDTO(ev)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEvent creates an event. Creating a holiday triggers the ripple and
// the response carries the per-parent report.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, end, err := parseInterval(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid interval", err)
		return
	}

	ev, report, err := h.Calendar.CreateEvent(r.Context(), calendar.EventType(req.Type), start, end, req.Title)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.pushMirror(r.Context(), ev)

	resp := CreateEventResponse{Event: toEventDTO(ev)}
	if report != nil {
		dto := toRippleReportDTO(*report)
		resp.Ripple = &dto
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetEvent returns a single event.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ev, err := h.Calendar.EventStore().GetEvent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get event", err)
		return
	}
	if ev == nil {
		writeError(w, http.StatusNotFound, "Event not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(*ev))
}

// UpdateEvent replaces an event's type/interval/title and regenerates slices.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, end, err := parseInterval(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid interval", err)
		return
	}

	ev := calendar.Event{ID: id, Type: calendar.EventType(req.Type), Start: start, End: end, Title: req.Title}
	if err := h.Calendar.UpdateEvent(r.Context(), ev); err != nil {
		writeDomainError(w, err)
		return
	}
	h.pushMirror(r.Context(), ev)

	writeJSON(w, http.StatusOK, toEventDTO(ev))
}

// DeleteEvent removes an event and its slices.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Calendar.DeleteEvent(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.removeMirror(r.Context(), id)

	w.WriteHeader(http.StatusNoContent)
}

// ListSubEvents returns the classified slices of one event.
func (h *Handler) ListSubEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	subs, err := h.Calendar.SubEventStore().GetByParentID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sub-events", err)
		return
	}

	dtos := make([]SubEventDTO, len(subs))
	for i, sub := range subs {
		dtos[i] = toSubEventDTO(sub)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// COMPENSATION HANDLERS
// =============================================================================

// GetEventCompensation returns the per-event summary.
func (h *Handler) GetEventCompensation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.Comp.Summary(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetMonthlyCompensation returns the month rollup for ?month=YYYY-MM
// (defaults to the current month).
func (h *Handler) GetMonthlyCompensation(w http.ResponseWriter, r *http.Request) {
	ref := time.Now()
	if month := r.URL.Query().Get("month"); month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month, expected YYYY-MM", err)
			return
		}
		ref = parsed
	}

	total, err := h.Comp.MonthlyTotal(r.Context(), ref)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute monthly total", err)
		return
	}
	summaries, err := h.Comp.MonthSummaries(r.Context(), ref)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute month summaries", err)
		return
	}

	dto := MonthlyCompensationDTO{
		Month: ref.Format("2006-01"),
		Total: total.InexactFloat64(),
	}
	for _, s := range summaries {
		dto.Summaries = append(dto.Summaries, toSummaryDTO(s))
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// CALENDAR EXPORT
// =============================================================================

// ExportICS streams the events intersecting ?from=..&to=.. (RFC 3339) as a
// single iCalendar document.
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseInterval(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range, expected RFC 3339 from/to", err)
		return
	}

	events, err := h.Calendar.EventStore().GetEventsOverlappingRange(r.Context(), from, to, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load events", err)
		return
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//OnCallEngine//Export//EN")
	for _, ev := range events {
		cal.Children = append(cal.Children, caldavstore.EventComponent(ev))
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="oncall.ics"`)
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		log.Printf("[API] ICS export encoding failed: %v", err)
	}
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// DeleteMonth bulk-deletes every event starting in ?month=YYYY-MM.
func (h *Handler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	ref, err := time.Parse("2006-01", r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month, expected YYYY-MM", err)
		return
	}

	deleted, err := h.Calendar.DeleteMonth(r.Context(), ref)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete month", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// TriggerSweep runs the repair sweep immediately.
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	report := h.Sweeper.Sweep(r.Context())
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseInterval(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// pushMirror best-effort mirrors a write to the remote store.
func (h *Handler) pushMirror(ctx context.Context, ev calendar.Event) {
	if h.Mirror == nil || !h.Mirror.IsConfigured() {
		return
	}
	if err := h.Mirror.Push(ctx, ev); err != nil {
		log.Printf("[API] CalDAV push for %s failed: %v", ev.ID, err)
	}
}

func (h *Handler) removeMirror(ctx context.Context, id string) {
	if h.Mirror == nil || !h.Mirror.IsConfigured() {
		return
	}
	if err := h.Mirror.Remove(ctx, id); err != nil {
		log.Printf("[API] CalDAV remove for %s failed: %v", id, err)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case calendar.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid event", err)
	case calendar.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Event not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "Operation failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

/*
Package caldav mirrors calendar events to a remote CalDAV document store.

PURPOSE:
  Pushes parent events to a CalDAV collection as one iCal object per event
  and pulls them back, so the on-call calendar shows up in any CalDAV
  client (iCloud, Nextcloud, Radicale). SQLite stays the system of record;
  this adapter is a mirror, not a second source of truth.

MAPPING:
  Event.ID    -> VEVENT UID (and the .ics resource name)
  Event.Type  -> VEVENT CATEGORIES
  Event.Title -> VEVENT SUMMARY
  Start/End   -> DTSTART/DTEND in UTC

FAILURE MODEL:
  Mirror writes are fire-and-forget from the caller's perspective: the api
  layer logs push failures and carries on, because local state is already
  durable. Pulls return errors normally.

SEE ALSO:
  - api/handlers.go: Push-after-write call sites
  - calendar/store.go: The interfaces the sqlite store implements
*/
package caldav

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/warp/oncall-engine/calendar"
)

// Mirror is a CalDAV-backed reflection of the event store.
type Mirror struct {
	baseURL      string
	username     string
	password     string
	calendarPath string

	mu     sync.Mutex // guards client; handlers push concurrently
	client *caldav.Client
}

// NewMirror creates a mirror for the given CalDAV collection.
func NewMirror(baseURL, username, password, calendarPath string) *Mirror {
	return &Mirror{
		baseURL:      baseURL,
		username:     username,
		password:     password,
		calendarPath: calendarPath,
	}
}

// IsConfigured returns true if the mirror has an endpoint and credentials.
func (m *Mirror) IsConfigured() bool {
	return m.baseURL != "" && m.username != "" && m.calendarPath != ""
}

func (m *Mirror) connect() (*caldav.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return m.client, nil
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{username: m.username, password: m.password},
		Timeout:   30 * time.Second,
	}

	client, err := caldav.NewClient(httpClient, m.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}
	m.client = client
	return client, nil
}

type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

// =============================================================================
// MIRROR OPERATIONS
// =============================================================================

// Push writes an event to the collection. PUT replaces, so push doubles as
// update.
func (m *Mirror) Push(ctx context.Context, ev calendar.Event) error {
	client, err := m.connect()
	if err != nil {
		return err
	}

	_, err = client.PutCalendarObject(ctx, m.objectPath(ev.ID), EventToICS(ev))
	if err != nil {
		return fmt.Errorf("push event %s: %w", ev.ID, err)
	}
	return nil
}

// Remove deletes an event's object from the collection.
func (m *Mirror) Remove(ctx context.Context, eventID string) error {
	client, err := m.connect()
	if err != nil {
		return err
	}

	if err := client.RemoveAll(ctx, m.objectPath(eventID)); err != nil {
		return fmt.Errorf("remove event %s: %w", eventID, err)
	}
	return nil
}

// Pull returns the mirrored events intersecting [from, to].
func (m *Mirror) Pull(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	client, err := m.connect()
	if err != nil {
		return nil, err
	}

	query := &caldav.CalendarQuery{
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					Start: from,
					End:   to,
				},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, m.calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	var events []calendar.Event
	for _, obj := range objects {
		ev, err := parseCalendarObject(&obj)
		if err != nil {
			continue // Skip objects the engine didn't produce
		}
		events = append(events, ev)
	}
	return events, nil
}

func (m *Mirror) objectPath(eventID string) string {
	path := m.calendarPath
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path + eventID + ".ics"
}

// =============================================================================
// ICAL MAPPING
// =============================================================================

// EventToICS converts one event to a standalone iCal document. Shared with
// the API's export endpoint.
func EventToICS(ev calendar.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//OnCallEngine//CalDAV//EN")
	cal.Children = append(cal.Children, EventComponent(ev))
	return cal
}

// EventComponent builds the VEVENT for one event.
func EventComponent(ev calendar.Event) *ical.Component {
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, ev.ID)
	vevent.Props.SetText(ical.PropCategories, string(ev.Type))
	if ev.Title != "" {
		vevent.Props.SetText(ical.PropSummary, ev.Title)
	}
	vevent.Props.SetDateTime(ical.PropDateTimeStart, ev.Start.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, ev.End.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	return vevent.Component
}

// parseCalendarObject maps one CalDAV object back to an event.
func parseCalendarObject(obj *caldav.CalendarObject) (calendar.Event, error) {
	if obj.Data == nil {
		return calendar.Event{}, fmt.Errorf("no data in calendar object")
	}

	for _, comp := range obj.Data.Children {
		if comp.Name != ical.CompEvent {
			continue
		}

		var ev calendar.Event
		if prop := comp.Props.Get(ical.PropUID); prop != nil {
			ev.ID = prop.Value
		}
		if prop := comp.Props.Get(ical.PropSummary); prop != nil {
			ev.Title = prop.Value
		}
		if prop := comp.Props.Get(ical.PropCategories); prop != nil {
			ev.Type = calendar.EventType(prop.Value)
		}
		if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil {
			if t, err := prop.DateTime(time.UTC); err == nil {
				ev.Start = t
			}
		}
		if prop := comp.Props.Get(ical.PropDateTimeEnd); prop != nil {
			if t, err := prop.DateTime(time.UTC); err == nil {
				ev.End = t
			}
		}

		if err := ev.Validate(); err != nil {
			return calendar.Event{}, err
		}
		return ev, nil
	}
	return calendar.Event{}, fmt.Errorf("no VEVENT in calendar object")
}

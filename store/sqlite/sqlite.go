/*
Package sqlite provides the local-database implementation of the calendar stores.

PURPOSE:
  Implements calendar.EventStore and calendar.SubEventStore on SQLite.
  This is the system of record; the caldav package mirrors events to a
  remote document store for export/sync.

KEY TABLES:
  events:      Parent calendar events (oncall, incident, holiday)
  sub_events:  Derived classified slices, keyed by parent_event_id

CASCADE:
  There is deliberately no foreign-key constraint from sub_events to
  events: slices are a rebuildable cache and the use-case layer cascades
  deletes by parent id. A dangling slice set is repaired, not rejected.

INDEXES:
  - idx_events_type_start:      Holiday set fetch and overlap queries
  - idx_sub_events_parent:      Delete/fetch by parent (hot path)
  - idx_sub_events_start:       Monthly aggregation

CONCURRENCY:
  Uses sync.RWMutex for thread-safety; SQLite is opened in WAL mode so
  readers don't block each other.

USAGE:
  store, err := sqlite.New("./data/oncall.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool with versioned migrations.

SEE ALSO:
  - calendar/store.go: Interface definitions
  - calendar/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/oncall-engine/calendar"
)

// Store implements both calendar store interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent (each sqlite3
	// connection gets its own in-memory database) and the mutex serializes
	// writers anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		title TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_type_start
		ON events(type, start_at);
	CREATE INDEX IF NOT EXISTS idx_events_start
		ON events(start_at);

	CREATE TABLE IF NOT EXISTS sub_events (
		id TEXT PRIMARY KEY,
		parent_event_id TEXT NOT NULL,
		type TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		is_weekday BOOLEAN NOT NULL,
		is_weekend BOOLEAN NOT NULL,
		is_holiday BOOLEAN NOT NULL,
		is_night_shift BOOLEAN NOT NULL,
		is_office_hours BOOLEAN NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sub_events_parent
		ON sub_events(parent_event_id);
	CREATE INDEX IF NOT EXISTS idx_sub_events_start
		ON sub_events(start_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EVENT STORE (calendar.EventStore interface)
// =============================================================================

// SaveEvents persists new events atomically.
func (s *Store) SaveEvents(ctx context.Context, events []calendar.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, ev := range events {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, type, start_at, end_at, title, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.Type, formatTime(ev.Start), formatTime(ev.End), ev.Title, now,
		)
		if err != nil {
			return fmt.Errorf("failed to save event %s: %w", ev.ID, err)
		}
	}
	return tx.Commit()
}

// GetAllEvents returns every stored event ordered by start.
func (s *Store) GetAllEvents(ctx context.Context) ([]calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEvents(ctx,
		`SELECT id, type, start_at, end_at, title FROM events ORDER BY start_at ASC`)
}

// GetEvent returns one event, or (nil, nil) when absent.
func (s *Store) GetEvent(ctx context.Context, id string) (*calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := s.queryEvents(ctx,
		`SELECT id, type, start_at, end_at, title FROM events WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

// UpdateEvent replaces a stored event by id.
func (s *Store) UpdateEvent(ctx context.Context, ev calendar.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET type = ?, start_at = ?, end_at = ?, title = ? WHERE id = ?`,
		ev.Type, formatTime(ev.Start), formatTime(ev.End), ev.Title, ev.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", ev.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &calendar.NotFoundError{EventID: ev.ID}
	}
	return nil
}

// DeleteEvent removes one event by id.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}

// DeleteEvents removes multiple events by id.
func (s *Store) DeleteEvents(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`DELETE FROM events WHERE id IN (%s)`, placeholders(len(ids)))
	_, err := s.db.ExecContext(ctx, query, toAny(ids)...)
	if err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}

// GetHolidayEvents returns all events of type holiday.
func (s *Store) GetHolidayEvents(ctx context.Context) ([]calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEvents(ctx,
		`SELECT id, type, start_at, end_at, title FROM events WHERE type = ? ORDER BY start_at ASC`,
		calendar.TypeHoliday)
}

// GetEventsOverlappingRange returns events of the given types whose interval
// intersects [from, to]. Instants are stored in a fixed-width UTC layout, so
// the overlap test can compare them as strings in SQL.
func (s *Store) GetEventsOverlappingRange(ctx context.Context, from, to time.Time, types []calendar.EventType) ([]calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, type, start_at, end_at, title FROM events WHERE start_at < ? AND end_at > ?`
	args := []any{formatTime(to), formatTime(from)}

	if len(types) > 0 {
		query += fmt.Sprintf(` AND type IN (%s)`, placeholders(len(types)))
		for _, t := range types {
			args = append(args, string(t))
		}
	}
	query += ` ORDER BY start_at ASC`

	return s.queryEvents(ctx, query, args...)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]calendar.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []calendar.Event
	for rows.Next() {
		var (
			ev         calendar.Event
			start, end string
			title      sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &start, &end, &title); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if ev.Start, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("failed to parse event %s start: %w", ev.ID, err)
		}
		if ev.End, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("failed to parse event %s end: %w", ev.ID, err)
		}
		ev.Title = title.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// =============================================================================
// SUB-EVENT STORE (calendar.SubEventStore interface)
// =============================================================================

// SaveSubEvents persists a batch of slices atomically.
func (s *Store) SaveSubEvents(ctx context.Context, subs []calendar.SubEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, sub := range subs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sub_events
			 (id, parent_event_id, type, start_at, end_at,
			  is_weekday, is_weekend, is_holiday, is_night_shift, is_office_hours, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.ID, sub.ParentEventID, sub.Type,
			formatTime(sub.Start), formatTime(sub.End),
			sub.IsWeekday, sub.IsWeekend, sub.IsHoliday, sub.IsNightShift, sub.IsOfficeHours, now,
		)
		if err != nil {
			return fmt.Errorf("failed to save sub-event %s: %w", sub.ID, err)
		}
	}
	return tx.Commit()
}

// GetAllSubEvents returns every stored slice ordered by start.
func (s *Store) GetAllSubEvents(ctx context.Context) ([]calendar.SubEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySubEvents(ctx, `SELECT id, parent_event_id, type, start_at, end_at,
		is_weekday, is_weekend, is_holiday, is_night_shift, is_office_hours
		FROM sub_events ORDER BY start_at ASC`)
}

// GetByParentID returns the slices belonging to one parent, ordered by start.
func (s *Store) GetByParentID(ctx context.Context, parentID string) ([]calendar.SubEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySubEvents(ctx, `SELECT id, parent_event_id, type, start_at, end_at,
		is_weekday, is_weekend, is_holiday, is_night_shift, is_office_hours
		FROM sub_events WHERE parent_event_id = ? ORDER BY start_at ASC`, parentID)
}

// DeleteByParentID removes all slices of one parent.
func (s *Store) DeleteByParentID(ctx context.Context, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM sub_events WHERE parent_event_id = ?`, parentID)
	if err != nil {
		return fmt.Errorf("failed to delete sub-events of %s: %w", parentID, err)
	}
	return nil
}

// DeleteByParentIDs removes all slices of multiple parents.
func (s *Store) DeleteByParentIDs(ctx context.Context, parentIDs []string) error {
	if len(parentIDs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`DELETE FROM sub_events WHERE parent_event_id IN (%s)`, placeholders(len(parentIDs)))
	_, err := s.db.ExecContext(ctx, query, toAny(parentIDs)...)
	if err != nil {
		return fmt.Errorf("failed to delete sub-events: %w", err)
	}
	return nil
}

func (s *Store) querySubEvents(ctx context.Context, query string, args ...any) ([]calendar.SubEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-events: %w", err)
	}
	defer rows.Close()

	var subs []calendar.SubEvent
	for rows.Next() {
		var (
			sub        calendar.SubEvent
			start, end string
		)
		err := rows.Scan(&sub.ID, &sub.ParentEventID, &sub.Type, &start, &end,
			&sub.IsWeekday, &sub.IsWeekend, &sub.IsHoliday, &sub.IsNightShift, &sub.IsOfficeHours)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sub-event: %w", err)
		}
		if sub.Start, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("failed to parse sub-event %s start: %w", sub.ID, err)
		}
		if sub.End, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("failed to parse sub-event %s end: %w", sub.ID, err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// timeLayout is RFC3339 with fully padded nanoseconds. Instants are converted
// to UTC before formatting, so every stored string has the same width and the
// same zone designator and values order lexicographically by instant.
// RFC3339Nano would trim trailing fractional zeros and would keep client
// offsets, both of which break string ordering in the overlap query.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAny(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

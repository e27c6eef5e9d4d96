// Package store provides in-memory store implementations for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/oncall-engine/calendar"
)

// =============================================================================
// MEMORY EVENT STORE
// =============================================================================

type MemoryEvents struct {
	mu     sync.RWMutex
	events map[string]calendar.Event
}

func NewMemoryEvents() *MemoryEvents {
	return &MemoryEvents{events: make(map[string]calendar.Event)}
}

func (m *MemoryEvents) SaveEvents(_ context.Context, events []calendar.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		m.events[ev.ID] = ev
	}
	return nil
}

func (m *MemoryEvents) GetAllEvents(_ context.Context) ([]calendar.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked(func(calendar.Event) bool { return true }), nil
}

func (m *MemoryEvents) GetEvent(_ context.Context, id string) (*calendar.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func (m *MemoryEvents) UpdateEvent(_ context.Context, event calendar.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return &calendar.NotFoundError{EventID: event.ID}
	}
	m.events[event.ID] = event
	return nil
}

func (m *MemoryEvents) DeleteEvent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

func (m *MemoryEvents) DeleteEvents(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.events, id)
	}
	return nil
}

func (m *MemoryEvents) GetHolidayEvents(_ context.Context) ([]calendar.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked(func(ev calendar.Event) bool { return ev.Type == calendar.TypeHoliday }), nil
}

func (m *MemoryEvents) GetEventsOverlappingRange(_ context.Context, from, to time.Time, types []calendar.EventType) ([]calendar.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[calendar.EventType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	return m.sortedLocked(func(ev calendar.Event) bool {
		if len(wanted) > 0 && !wanted[ev.Type] {
			return false
		}
		return ev.Overlaps(from, to)
	}), nil
}

func (m *MemoryEvents) sortedLocked(keep func(calendar.Event) bool) []calendar.Event {
	var result []calendar.Event
	for _, ev := range m.events {
		if keep(ev) {
			result = append(result, ev)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result
}

// =============================================================================
// MEMORY SUB-EVENT STORE
// =============================================================================

type MemorySubEvents struct {
	mu       sync.RWMutex
	byParent map[string][]calendar.SubEvent

	// FailSaves forces SaveSubEvents to fail, for exercising best-effort paths.
	FailSaves error
}

func NewMemorySubEvents() *MemorySubEvents {
	return &MemorySubEvents{byParent: make(map[string][]calendar.SubEvent)}
}

func (m *MemorySubEvents) SaveSubEvents(_ context.Context, subs []calendar.SubEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	for _, sub := range subs {
		m.byParent[sub.ParentEventID] = append(m.byParent[sub.ParentEventID], sub)
	}
	return nil
}

func (m *MemorySubEvents) GetAllSubEvents(_ context.Context) ([]calendar.SubEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []calendar.SubEvent
	for _, subs := range m.byParent {
		result = append(result, subs...)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

func (m *MemorySubEvents) GetByParentID(_ context.Context, parentID string) ([]calendar.SubEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	subs := make([]calendar.SubEvent, len(m.byParent[parentID]))
	copy(subs, m.byParent[parentID])
	sort.Slice(subs, func(i, j int) bool { return subs[i].Start.Before(subs[j].Start) })
	return subs, nil
}

func (m *MemorySubEvents) DeleteByParentID(_ context.Context, parentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byParent, parentID)
	return nil
}

func (m *MemorySubEvents) DeleteByParentIDs(_ context.Context, parentIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range parentIDs {
		delete(m.byParent, id)
	}
	return nil
}

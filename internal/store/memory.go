package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/smart-event-planner/internal/events"
)

// MemoryStore is a concurrency-safe in-memory events.Store. It backs the
// service when no database is configured.
type MemoryStore struct {
	mu sync.RWMutex

	// key: event id
	data map[uuid.UUID]events.Event
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[uuid.UUID]events.Event)}
}

// CreateEvent stores a copy of ev.
func (s *MemoryStore) CreateEvent(_ context.Context, ev events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[ev.ID] = clone(ev)
	return nil
}

// GetEvent returns a copy of the event with id.
func (s *MemoryStore) GetEvent(_ context.Context, id uuid.UUID) (events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.data[id]
	if !ok {
		return events.Event{}, events.ErrEventNotFound
	}
	return clone(ev), nil
}

// ListEvents returns copies of all events ordered by date, then creation time.
func (s *MemoryStore) ListEvents(_ context.Context) ([]events.Event, error) {
	s.mu.RLock()
	result := make([]events.Event, 0, len(s.data))
	for _, ev := range s.data {
		result = append(result, clone(ev))
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateEvent replaces the stored event and its child records.
func (s *MemoryStore) UpdateEvent(_ context.Context, ev events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[ev.ID]; !ok {
		return events.ErrEventNotFound
	}
	s.data[ev.ID] = clone(ev)
	return nil
}

// clone copies the child records so callers never share them with the store.
func clone(ev events.Event) events.Event {
	if ev.Weather != nil {
		w := *ev.Weather
		ev.Weather = &w
	}
	if ev.Analysis != nil {
		a := *ev.Analysis
		ev.Analysis = &a
	}
	return ev
}

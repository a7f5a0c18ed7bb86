package audit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps entries in memory. It is the test double and the
// development fallback when Postgres is not configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.entries) - limit
	if start < 0 {
		start = 0
	}
	out := append([]Entry{}, s.entries[start:]...)
	// Most recent first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *InMemoryStore) ListByEntityType(_ context.Context, entityType string) ([]Entry, error) {
	return s.filter(func(e Entry) bool { return e.EntityType == entityType }), nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorName string) ([]Entry, error) {
	return s.filter(func(e Entry) bool { return e.ActorName == actorName }), nil
}

func (s *InMemoryStore) ListByTimeRange(_ context.Context, from, to time.Time) ([]Entry, error) {
	return s.filter(func(e Entry) bool {
		return !e.Timestamp.Before(from) && !e.Timestamp.After(to)
	}), nil
}

func (s *InMemoryStore) filter(keep func(Entry) bool) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Clear resets the store between tests.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

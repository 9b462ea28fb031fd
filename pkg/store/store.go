package store

import (
	"sync"

	"xscraper/pkg/timeline"
)

// Store accumulates extracted records keyed by id. The first write for an id
// wins; later records with the same id are ignored. Insertion order is
// preserved so flushed output matches encounter order.
type Store struct {
	mu      sync.RWMutex
	index   map[string]int
	records []timeline.Record
}

// New creates an empty store.
func New() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// Add inserts the record unless its id is already present. It reports whether
// the record was inserted.
func (s *Store) Add(rec timeline.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[rec.ID]; exists {
		return false
	}
	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	return true
}

// Values returns the stored records in insertion order. The returned slice is
// a copy; callers may request it repeatedly without side effects.
func (s *Store) Values() []timeline.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]timeline.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Clear empties all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = make(map[string]int)
	s.records = nil
}

// Size returns the current record count.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

package history

import (
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of the measurement store
type MemoryStore struct {
	records map[string]*Record
	order   []string // insertion order of record IDs
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		order:   make([]string, 0),
	}
}

// SaveRecord adds or updates a record in the store
func (s *MemoryStore) SaveRecord(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		s.order = append(s.order, record.ID)
	}
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

// GetRecord retrieves a record by ID
func (s *MemoryStore) GetRecord(id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

// ListRecords returns records newest-first, at most limit of them.
// A limit of zero or less returns everything.
func (s *MemoryStore) ListRecords(limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*Record, 0, len(s.records))
	for _, id := range s.order {
		clone := *s.records[id]
		records = append(records, &clone)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// DeleteRecord removes a record from the store
func (s *MemoryStore) DeleteRecord(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrRecordNotFound
	}
	delete(s.records, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes all records and reports how many were dropped
func (s *MemoryStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	s.records = make(map[string]*Record)
	s.order = s.order[:0]
	return n, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}

// HealthCheck always succeeds for the in-memory store
func (s *MemoryStore) HealthCheck() error {
	return nil
}

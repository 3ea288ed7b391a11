package archive

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps game records in process memory. History is lost on
// restart, which is acceptable for casual play without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []Record
}

// NewMemoryStore creates an empty in-memory archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Save implements [Store].
func (m *MemoryStore) Save(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextID
	m.nextID++
	rec.Moves = slices.Clone(rec.Moves)
	m.records = append(m.records, rec)
	return rec, nil
}

// Get implements [Store].
func (m *MemoryStore) Get(_ context.Context, id int64) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records {
		if rec.ID == id {
			rec.Moves = slices.Clone(rec.Moves)
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("memory archive: no record with id %d", id)
}

// Recent implements [Store].
func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		rec := m.records[i]
		rec.Moves = slices.Clone(rec.Moves)
		out = append(out, rec)
	}
	return out, nil
}

// Close implements [Store]. It is a no-op for the in-memory store.
func (m *MemoryStore) Close() {}

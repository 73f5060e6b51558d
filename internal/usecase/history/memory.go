package history

import (
	"context"
	"sync"

	"github.com/kailas-cloud/askdb/internal/domain/history"
)

// MemoryStore keeps entries in process memory. A positive maxEntries evicts
// the oldest entries once the cap is reached.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    []history.Entry
	maxEntries int
}

// NewMemoryStore creates an in-memory store. maxEntries <= 0 means unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{maxEntries: maxEntries}
}

// Append adds e as the newest entry.
func (m *MemoryStore) Append(_ context.Context, e history.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, e)
	if m.maxEntries > 0 && len(m.entries) > m.maxEntries {
		drop := len(m.entries) - m.maxEntries
		m.entries = append(m.entries[:0:0], m.entries[drop:]...)
	}
	return nil
}

// List returns a copy of the newest limit entries.
func (m *MemoryStore) List(_ context.Context, limit int) ([]history.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from := 0
	if limit > 0 && len(m.entries) > limit {
		from = len(m.entries) - limit
	}
	out := make([]history.Entry, len(m.entries)-from)
	copy(out, m.entries[from:])
	return out, nil
}

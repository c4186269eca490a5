package cart

import (
	"context"
	"sync"
)

// Store persists a cart's name-to-quantity mapping between process runs. The
// pricing core stays storage-agnostic: anything that can get, set, and clear
// the mapping will do.
type Store interface {
	Get(ctx context.Context) (map[string]int, error)
	Set(ctx context.Context, name string, qty int) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps cart entries in process memory. Used by the CLI and by
// tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]int
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]int)}
}

// Get returns a copy of the stored entries.
func (m *MemoryStore) Get(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.entries))
	for name, qty := range m.entries {
		out[name] = qty
	}
	return out, nil
}

// Set upserts one entry.
func (m *MemoryStore) Set(_ context.Context, name string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[name] = qty
	return nil
}

// Clear drops all entries.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]int)
	return nil
}

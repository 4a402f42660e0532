package catalog

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Compile-time check to ensure MemoryStore satisfies Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store, mainly for tests and fixtures.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu     sync.RWMutex
	tracks map[string]Track
}

// NewMemoryStore creates a store holding tracks.
func NewMemoryStore(tracks ...Track) *MemoryStore {
	m := &MemoryStore{tracks: make(map[string]Track, len(tracks))}
	for _, t := range tracks {
		m.tracks[t.ID] = t
	}
	return m
}

// Get returns the track with the given identifier.
func (m *MemoryStore) Get(ctx context.Context, id string) (Track, error) {
	if err := ctx.Err(); err != nil {
		return Track{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tracks[id]
	if !ok {
		return Track{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return t, nil
}

// All returns every track ordered by identifier.
func (m *MemoryStore) All(ctx context.Context) ([]Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Track, 0, len(m.tracks))
	for _, id := range slices.Sorted(maps.Keys(m.tracks)) {
		out = append(out, m.tracks[id])
	}
	return out, nil
}

// Put inserts or replaces a track.
func (m *MemoryStore) Put(t Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks[t.ID] = t
}

// Delete removes a track.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tracks, id)
}

// Len returns the number of tracks.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tracks)
}

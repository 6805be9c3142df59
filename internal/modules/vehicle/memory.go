// README: In-memory vehicle store for tests.
package vehicle

import (
	"context"
	"sort"
	"sync"

	"kerb/internal/types"
)

type MemoryStore struct {
	mu       sync.Mutex
	vehicles map[types.ID]Vehicle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vehicles: make(map[types.ID]Vehicle)}
}

func (m *MemoryStore) ListByOwner(_ context.Context, owner types.ID) ([]Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Vehicle
	for _, v := range m.vehicles {
		if v.OwnerID == owner {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Insert(_ context.Context, v Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = v
	return nil
}

func (m *MemoryStore) InsertDefault(_ context.Context, v Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.vehicles {
		if existing.OwnerID == v.OwnerID && existing.IsDefault {
			existing.IsDefault = false
			m.vehicles[id] = existing
		}
	}
	v.IsDefault = true
	m.vehicles[v.ID] = v
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, owner, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok || v.OwnerID != owner {
		return ErrNotFound
	}
	delete(m.vehicles, id)
	return nil
}

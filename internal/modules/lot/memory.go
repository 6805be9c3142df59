// README: In-memory lot store for tests.
package lot

import (
	"context"
	"sort"
	"sync"

	"kerb/internal/types"
)

type MemoryStore struct {
	mu   sync.Mutex
	lots map[types.ID]Lot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lots: make(map[types.ID]Lot)}
}

func (m *MemoryStore) Put(l Lot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lots[l.ID] = l
}

func (m *MemoryStore) ActiveLots(_ context.Context) ([]Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Lot
	for _, l := range m.lots {
		if l.IsActive {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) LotByID(_ context.Context, id types.ID) (*Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

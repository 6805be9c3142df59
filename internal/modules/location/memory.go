// README: In-memory saved-location store for tests and local development.
package location

import (
	"context"
	"sort"
	"sync"

	"kerb/internal/types"
)

type MemoryStore struct {
	mu      sync.Mutex
	records map[types.ID]*SavedLocation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[types.ID]*SavedLocation{}}
}

func (s *MemoryStore) ActiveByOwner(_ context.Context, owner types.ID) (*SavedLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []*SavedLocation
	for _, loc := range s.records {
		if loc.OwnerID == owner && loc.IsActive {
			candidates = append(candidates, loc)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	cp := *candidates[0]
	return &cp, nil
}

func (s *MemoryStore) DeactivateActive(_ context.Context, owner types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, loc := range s.records {
		if loc.OwnerID == owner && loc.IsActive {
			loc.IsActive = false
		}
	}
	return nil
}

func (s *MemoryStore) Insert(_ context.Context, loc *SavedLocation) (*SavedLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *loc
	s.records[loc.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) Patch(_ context.Context, owner, id types.ID, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.records[id]
	if !ok || loc.OwnerID != owner {
		return ErrNotFound
	}
	if patch.Notes != nil {
		loc.Notes = patch.Notes
	}
	if patch.PhotoURL != nil {
		loc.PhotoURL = patch.PhotoURL
	}
	if patch.SessionID != nil {
		loc.SessionID = patch.SessionID
	}
	if patch.SpotID != nil {
		loc.SpotID = patch.SpotID
	}
	return nil
}

func (s *MemoryStore) Deactivate(_ context.Context, owner, id types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.records[id]
	if !ok || loc.OwnerID != owner {
		return ErrNotFound
	}
	loc.IsActive = false
	return nil
}

// ActiveCount reports how many records are still active for an owner.
// Test helper for the single-active invariant.
func (s *MemoryStore) ActiveCount(owner types.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, loc := range s.records {
		if loc.OwnerID == owner && loc.IsActive {
			n++
		}
	}
	return n
}

// Len reports the total number of stored records, active or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

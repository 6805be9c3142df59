// README: In-memory session store for tests and local development.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"kerb/internal/types"
)

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[types.ID]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[types.ID]*Session{}}
}

func (s *MemoryStore) Insert(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) SetExtension(_ context.Context, id types.ID, expiresAt time.Time, accrued float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.Status != StatusActive {
		return ErrNotFound
	}
	sess.ExpiresAt = expiresAt
	sess.Accrued.Amount = accrued
	return nil
}

func (s *MemoryStore) SetEnded(_ context.Context, id types.ID, status Status, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.Status != StatusActive {
		return ErrNotFound
	}
	sess.Status = status
	sess.EndedAt = &endedAt
	return nil
}

func (s *MemoryStore) ActiveByOwner(_ context.Context, owner types.ID) ([]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Session
	for _, sess := range s.sessions {
		if sess.OwnerID == owner && sess.Status == StatusActive {
			cp := *sess
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

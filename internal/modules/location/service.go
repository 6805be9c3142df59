// README: Location ledger; owns the active saved car location and its offline fallback.
package location

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"kerb/internal/types"
)

var (
	ErrNotFound          = errors.New("location not found")
	ErrRemoteUnavailable = errors.New("location store unavailable")
	ErrBadRequest        = errors.New("bad request")
)

// Store is the remote persistence collaborator. Reads include lot/section
// display joins. ActiveByOwner returns ErrNotFound when the owner has no
// active record. Patch and Deactivate match on owner as well as id, so a
// record belonging to someone else reads as ErrNotFound.
type Store interface {
	ActiveByOwner(ctx context.Context, owner types.ID) (*SavedLocation, error)
	DeactivateActive(ctx context.Context, owner types.ID) error
	Insert(ctx context.Context, loc *SavedLocation) (*SavedLocation, error)
	Patch(ctx context.Context, owner, id types.ID, patch Patch) error
	Deactivate(ctx context.Context, owner, id types.ID) error
}

// Patch carries the fields Update may change on an existing record.
type Patch struct {
	Notes     *string
	PhotoURL  *string
	SessionID *types.ID
	SpotID    *types.ID
}

type SaveCommand struct {
	OwnerID   types.ID
	Position  types.GeoPosition
	SessionID *types.ID
	LotID     *types.ID
	SectionID *types.ID
	SpotID    *types.ID
	Notes     *string
	PhotoURL  *string
}

// ownerView is one owner's slice of ledger state. The service is shared by
// every caller of the process, so nothing here may be global: the active
// slot, the in-flight flag, and the retained error all live per owner.
type ownerView struct {
	active  *SavedLocation
	loading bool
	lastErr string
}

// Service owns the single active-saved-location slot per owner and the
// bounded offline cache behind it. Callers serialize their own mutations;
// Loading is the advisory in-flight flag they key off.
type Service struct {
	store Store
	cache *OfflineCache
	nowFn func() time.Time

	mu    sync.Mutex
	views map[types.ID]*ownerView
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		cache: NewOfflineCache(),
		nowFn: time.Now,
		views: map[types.ID]*ownerView{},
	}
}

// FetchActive loads the owner's most recent active record. A remote failure
// degrades to the owner's newest offline-cached entry instead of failing the
// caller; the second return reports that degraded path explicitly, and the
// failure itself is retained in LastError for passive display.
func (s *Service) FetchActive(ctx context.Context, owner types.ID) (*SavedLocation, bool, error) {
	s.begin(owner)
	defer s.end(owner)

	loc, err := s.store.ActiveByOwner(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		s.setActive(owner, nil)
		return nil, false, nil
	}
	if err != nil {
		s.setErr(owner, err.Error())
		if cached, ok := s.cache.Newest(owner); ok {
			s.setActive(owner, cached)
			return cached, true, nil
		}
		return nil, false, fmt.Errorf("fetch active location: %w: %v", ErrRemoteUnavailable, err)
	}

	s.setActive(owner, loc)
	s.cache.Put(loc)
	return loc, false, nil
}

// Save is the only write path that changes "where is my car": it deactivates
// the owner's prior active record, inserts the new one, and mirrors the
// result into the offline cache.
func (s *Service) Save(ctx context.Context, cmd SaveCommand) (*SavedLocation, error) {
	if cmd.OwnerID == "" {
		return nil, ErrBadRequest
	}
	s.begin(cmd.OwnerID)
	defer s.end(cmd.OwnerID)

	if err := s.store.DeactivateActive(ctx, cmd.OwnerID); err != nil {
		s.setErr(cmd.OwnerID, err.Error())
		return nil, fmt.Errorf("deactivate prior location: %w: %v", ErrRemoteUnavailable, err)
	}

	loc := &SavedLocation{
		ID:        newID(),
		OwnerID:   cmd.OwnerID,
		Position:  cmd.Position,
		SessionID: cmd.SessionID,
		LotID:     cmd.LotID,
		SectionID: cmd.SectionID,
		SpotID:    cmd.SpotID,
		Notes:     cmd.Notes,
		PhotoURL:  cmd.PhotoURL,
		IsActive:  true,
		CreatedAt: s.nowFn(),
	}
	stored, err := s.store.Insert(ctx, loc)
	if err != nil {
		s.setErr(cmd.OwnerID, err.Error())
		return nil, fmt.Errorf("insert location: %w: %v", ErrRemoteUnavailable, err)
	}

	s.setActive(cmd.OwnerID, stored)
	s.cache.Put(stored)
	return stored, nil
}

// Update patches a record the owner holds, then reloads the active record so
// in-memory state stays consistent with the store. A record belonging to a
// different owner is ErrNotFound.
func (s *Service) Update(ctx context.Context, owner, id types.ID, patch Patch) error {
	if err := s.store.Patch(ctx, owner, id, patch); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		s.setErr(owner, err.Error())
		return fmt.Errorf("patch location: %w: %v", ErrRemoteUnavailable, err)
	}
	_, _, err := s.FetchActive(ctx, owner)
	return err
}

// Delete logically deletes a record the owner holds and clears the owner's
// active slot. The row itself is preserved for history and offline fallback.
func (s *Service) Delete(ctx context.Context, owner, id types.ID) error {
	if err := s.store.Deactivate(ctx, owner, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		s.setErr(owner, err.Error())
		return fmt.Errorf("deactivate location: %w: %v", ErrRemoteUnavailable, err)
	}
	s.setActive(owner, nil)
	return nil
}

// CacheOffline exposes the raw cache write for callers that obtain a record
// out of band (e.g. a sync pass after regaining connectivity).
func (s *Service) CacheOffline(loc *SavedLocation) {
	s.cache.Put(loc)
}

func (s *Service) Active(owner types.ID) *SavedLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views[owner]; ok {
		return v.active
	}
	return nil
}

func (s *Service) Loading(owner types.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views[owner]; ok {
		return v.loading
	}
	return false
}

func (s *Service) LastError(owner types.ID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views[owner]; ok {
		return v.lastErr
	}
	return ""
}

// view returns the owner's state slot, creating it on first use. Callers
// hold s.mu.
func (s *Service) view(owner types.ID) *ownerView {
	v, ok := s.views[owner]
	if !ok {
		v = &ownerView{}
		s.views[owner] = v
	}
	return v
}

func (s *Service) begin(owner types.ID) {
	s.mu.Lock()
	v := s.view(owner)
	v.loading = true
	v.lastErr = ""
	s.mu.Unlock()
}

func (s *Service) end(owner types.ID) {
	s.mu.Lock()
	s.view(owner).loading = false
	s.mu.Unlock()
}

func (s *Service) setActive(owner types.ID, loc *SavedLocation) {
	s.mu.Lock()
	s.view(owner).active = loc
	s.mu.Unlock()
}

func (s *Service) setErr(owner types.ID, msg string) {
	s.mu.Lock()
	s.view(owner).lastErr = msg
	s.mu.Unlock()
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}

// README: Session ledger; creates, extends, and ends timed parking sessions.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"kerb/internal/modules/pricing"
	"kerb/internal/types"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidState = errors.New("invalid session state transition")
)

// TierResolver resolves and validates the pricing reference at purchase and
// extension time.
type TierResolver interface {
	Tier(ctx context.Context, id types.ID) (*pricing.Tier, error)
}

// Store is the remote persistence collaborator. ActiveByOwner returns
// sessions with stored status "active", newest first, with display joins.
type Store interface {
	Insert(ctx context.Context, s *Session) error
	Get(ctx context.Context, id types.ID) (*Session, error)
	SetExtension(ctx context.Context, id types.ID, expiresAt time.Time, accrued float64) error
	SetEnded(ctx context.Context, id types.ID, status Status, endedAt time.Time) error
	ActiveByOwner(ctx context.Context, owner types.ID) ([]*Session, error)
}

// ownerView is one owner's slice of ledger state. The service is shared by
// every caller of the process, so the active collection, the in-flight flag,
// and the retained error all live per owner.
type ownerView struct {
	sessions []*Session
	loading  bool
	lastErr  string
}

// Service owns the in-memory active-session collection per owner.
// Concurrent extends on one session are last-write-wins; callers serialize
// via the Loading flag (no optimistic locking here).
type Service struct {
	store   Store
	pricing TierResolver
	nowFn   func() time.Time

	mu    sync.Mutex
	views map[types.ID]*ownerView
}

func NewService(store Store, pricing TierResolver) *Service {
	return &Service{
		store:   store,
		pricing: pricing,
		nowFn:   time.Now,
		views:   map[types.ID]*ownerView{},
	}
}

type CreateCommand struct {
	OwnerID       types.ID
	TierID        types.ID
	DurationHours float64
	VehicleID     *types.ID
	PlateEntry    *string
	SpotID        *types.ID
}

// Create purchases a session: resolves the tier, prices the duration against
// the daily cap, stamps the expiry, and issues a human-readable token
// suitable for QR encoding.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Session, error) {
	if cmd.OwnerID == "" || cmd.DurationHours <= 0 {
		return nil, ErrBadRequest
	}
	// Exactly one of a garage vehicle or a typed-in plate.
	if (cmd.VehicleID == nil) == (cmd.PlateEntry == nil) {
		return nil, ErrBadRequest
	}
	if cmd.PlateEntry != nil {
		plate := strings.ToUpper(strings.TrimSpace(*cmd.PlateEntry))
		if plate == "" {
			return nil, ErrBadRequest
		}
		cmd.PlateEntry = &plate
	}

	s.begin(cmd.OwnerID)
	defer s.end(cmd.OwnerID)

	tier, err := s.pricing.Tier(ctx, cmd.TierID)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	tierID := tier.ID
	sess := &Session{
		ID:         newID(),
		OwnerID:    cmd.OwnerID,
		VehicleID:  cmd.VehicleID,
		SpotID:     cmd.SpotID,
		TierID:     &tierID,
		Status:     StatusActive,
		StartedAt:  now,
		ExpiresAt:  now.Add(hoursToDuration(cmd.DurationHours)),
		Accrued:    types.Money{Amount: pricing.ComputeAmount(tier.HourlyRate, tier.DailyCap, cmd.DurationHours), Currency: tier.Currency},
		Token:      newToken(now),
		PlateEntry: cmd.PlateEntry,
		CreatedAt:  now,
		Tier:       tier,
	}
	if err := s.store.Insert(ctx, sess); err != nil {
		s.setErr(cmd.OwnerID, err.Error())
		return nil, fmt.Errorf("insert session: %w", err)
	}

	s.refresh(ctx, cmd.OwnerID)
	return sess, nil
}

// Extend pushes the expiry out and re-caps the cumulative cost: the combined
// total, not just the increment, is clamped to the tier's daily cap.
func (s *Service) Extend(ctx context.Context, id types.ID, additionalHours float64) error {
	if additionalHours <= 0 {
		return ErrBadRequest
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.Status != StatusActive {
		return ErrInvalidState
	}

	s.begin(sess.OwnerID)
	defer s.end(sess.OwnerID)

	tier := sess.Tier
	if tier == nil {
		if sess.TierID == nil {
			return fmt.Errorf("extend session %s: %w", id, pricing.ErrInvalidTier)
		}
		tier, err = s.pricing.Tier(ctx, *sess.TierID)
		if err != nil {
			return err
		}
	}

	newExpiry := sess.ExpiresAt.Add(hoursToDuration(additionalHours))
	newTotal := pricing.CapTotal(sess.Accrued.Amount+tier.HourlyRate*additionalHours, tier.DailyCap)

	if err := s.store.SetExtension(ctx, id, newExpiry, newTotal); err != nil {
		s.setErr(sess.OwnerID, err.Error())
		return fmt.Errorf("extend session: %w", err)
	}

	s.refresh(ctx, sess.OwnerID)
	return nil
}

// End completes a session. Ended sessions drop out of the active view on the
// refresh that follows.
func (s *Service) End(ctx context.Context, id types.ID) error {
	return s.finish(ctx, id, StatusCompleted)
}

// Cancel voids a session without normal completion.
func (s *Service) Cancel(ctx context.Context, id types.ID) error {
	return s.finish(ctx, id, StatusCancelled)
}

func (s *Service) finish(ctx context.Context, id types.ID, to Status) error {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(sess.Status, to) {
		return ErrInvalidState
	}

	s.begin(sess.OwnerID)
	defer s.end(sess.OwnerID)

	if err := s.store.SetEnded(ctx, id, to, s.nowFn()); err != nil {
		s.setErr(sess.OwnerID, err.Error())
		return fmt.Errorf("end session: %w", err)
	}
	s.refresh(ctx, sess.OwnerID)
	return nil
}

// FetchActive loads the owner's stored-active sessions, newest first.
func (s *Service) FetchActive(ctx context.Context, owner types.ID) ([]*Session, error) {
	s.begin(owner)
	defer s.end(owner)

	list, err := s.store.ActiveByOwner(ctx, owner)
	if err != nil {
		s.setErr(owner, err.Error())
		return nil, fmt.Errorf("fetch active sessions: %w", err)
	}
	s.mu.Lock()
	s.view(owner).sessions = list
	s.mu.Unlock()
	return list, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Session, error) {
	return s.store.Get(ctx, id)
}

// Sessions returns the owner's last-fetched active collection.
func (s *Service) Sessions(owner types.ID) []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views[owner]; ok {
		return v.sessions
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

// refresh keeps the owner's active view consistent after a mutation. A
// refresh failure leaves the previous collection in place; the error is
// retained for passive display only.
func (s *Service) refresh(ctx context.Context, owner types.ID) {
	list, err := s.store.ActiveByOwner(ctx, owner)
	if err != nil {
		s.setErr(owner, err.Error())
		return
	}
	s.mu.Lock()
	s.view(owner).sessions = list
	s.mu.Unlock()
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

func (s *Service) setErr(owner types.ID, msg string) {
	s.mu.Lock()
	s.view(owner).lastErr = msg
	s.mu.Unlock()
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

const tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newToken issues a display token of the form PARK-<millis>-<6 base36 chars>.
// Unique enough for human display and QR encoding; not a secret.
func newToken(now time.Time) string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	suffix := make([]byte, len(b))
	for i, c := range b {
		suffix[i] = tokenAlphabet[int(c)%len(tokenAlphabet)]
	}
	return fmt.Sprintf("PARK-%d-%s", now.UnixMilli(), suffix)
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(fmt.Sprintf("%x", b))
}

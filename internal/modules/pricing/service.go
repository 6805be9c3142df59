// README: Pricing service computes session cost from a tier, duration, and daily cap.
package pricing

import (
	"context"
	"errors"
	"time"

	"kerb/internal/types"
)

var ErrInvalidTier = errors.New("invalid pricing tier")

// Store resolves tiers from the remote catalog.
type Store interface {
	TierByID(ctx context.Context, id types.ID) (*Tier, error)
}

type Service struct {
	store Store
	nowFn func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, nowFn: time.Now}
}

// Tier resolves a tier that is active and inside its validity window.
// Anything else is ErrInvalidTier: an unresolved pricing reference must
// never produce a session.
func (s *Service) Tier(ctx context.Context, id types.ID) (*Tier, error) {
	if id == "" {
		return nil, ErrInvalidTier
	}
	tier, err := s.store.TierByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tier == nil || !tier.ValidAt(s.nowFn()) {
		return nil, ErrInvalidTier
	}
	return tier, nil
}

// ComputeAmount prices a duration against an hourly rate, capped by the
// optional daily maximum. Hours may be fractional; the result is stored
// unrounded. The same formula prices a new session and re-caps a cumulative
// total at extension time.
func ComputeAmount(hourlyRate float64, dailyCap *float64, hours float64) float64 {
	return CapTotal(hourlyRate*hours, dailyCap)
}

// CapTotal clamps a cumulative amount to the daily cap. Extension pricing
// runs the combined total through this so the cumulative cost can never
// exceed the cap even when the increment alone would not trigger it.
func CapTotal(total float64, dailyCap *float64) float64 {
	if dailyCap != nil && total > *dailyCap {
		return *dailyCap
	}
	return total
}

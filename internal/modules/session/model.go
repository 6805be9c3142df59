// README: Parking session aggregate, status machine, and read-time status projection.
package session

import (
	"time"

	"kerb/internal/modules/pricing"
	"kerb/internal/types"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"

	// StatusExpired is a read-time classification, never stored: an active
	// session whose expiry has passed presents as expired but remains
	// "active" in the store until ended.
	StatusExpired Status = "expired"
)

// Session is one timed parking rental. ExpiresAt is always after StartedAt;
// Accrued never decreases while the session is active; EndedAt is set
// exactly when the status is terminal.
type Session struct {
	ID         types.ID
	OwnerID    types.ID
	VehicleID  *types.ID
	SpotID     *types.ID
	TierID     *types.ID
	Status     Status
	StartedAt  time.Time
	ExpiresAt  time.Time
	EndedAt    *time.Time
	Accrued    types.Money
	Token      string
	PlateEntry *string
	CreatedAt  time.Time

	// Joined display data, populated on reads.
	Vehicle *VehicleRef
	Tier    *pricing.Tier
	Spot    *SpotRef
}

// VehicleRef labels the vehicle a session was bought for.
type VehicleRef struct {
	ID       types.ID
	Plate    string
	Make     *string
	Model    *string
	Color    *string
	Nickname *string
}

// SpotRef is the flattened spot→section→lot display chain.
type SpotRef struct {
	ID          types.ID
	Number      string
	SectionID   types.ID
	SectionName string
	SectionCode string
	Level       int
	LotID       types.ID
	LotName     string
	LotCode     string
}

// AllowedTransitions is the persisted state flow. Terminal states have no
// outgoing edges; "expired" never appears because it is not stored.
var AllowedTransitions = map[Status][]Status{
	StatusActive: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// PresentedStatus projects the stored status onto what a reader should see
// at the given wall-clock instant. Pure function of (status, expiry, now).
func PresentedStatus(s *Session, now time.Time) Status {
	if s.Status == StatusActive && now.After(s.ExpiresAt) {
		return StatusExpired
	}
	return s.Status
}

// Remaining reports time left on an active session, clamped at zero.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.Status != StatusActive {
		return 0
	}
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

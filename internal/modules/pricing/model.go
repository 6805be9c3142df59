// README: Pricing tier definition for hourly parking rates.
package pricing

import (
	"time"

	"kerb/internal/types"
)

// Tier is an hourly rate with an optional daily cap, scoped to one lot.
// Tiers are immutable once a session references them.
type Tier struct {
	ID          types.ID
	LotID       types.ID
	Name        string
	Description *string
	HourlyRate  float64
	DailyCap    *float64
	Currency    string
	IsActive    bool
	ValidFrom   time.Time
	ValidUntil  *time.Time
	CreatedAt   time.Time
}

// ValidAt reports whether the tier may price a session starting at t.
func (t Tier) ValidAt(at time.Time) bool {
	if !t.IsActive {
		return false
	}
	if at.Before(t.ValidFrom) {
		return false
	}
	if t.ValidUntil != nil && at.After(*t.ValidUntil) {
		return false
	}
	return true
}

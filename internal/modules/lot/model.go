// README: Parking lot catalog models.
package lot

import (
	"time"

	"kerb/internal/types"
)

type Lot struct {
	ID        types.ID
	Name      string
	Code      string
	Address   *string
	Position  types.Point
	IsActive  bool
	CreatedAt time.Time

	Sections []Section
	Tiers    []Tier
}

type Section struct {
	ID         types.ID
	LotID      types.ID
	Name       string
	Code       string
	Level      int
	TotalSpots int
	FreeSpots  int
}

// Tier is the catalog view of a pricing tier; resolution for billing lives in
// the pricing module.
type Tier struct {
	ID         types.ID
	Name       string
	HourlyRate float64
	DailyCap   *float64
	Currency   string
}

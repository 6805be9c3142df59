// README: Saved car-location record and its display joins.
package location

import (
	"time"

	"kerb/internal/types"
)

// SavedLocation is one saved "where I parked" record. At most one record per
// owner has IsActive set; saving a new one deactivates the prior record
// instead of updating it in place, so history survives. Deletion is logical.
type SavedLocation struct {
	ID        types.ID
	OwnerID   types.ID
	Position  types.GeoPosition
	SessionID *types.ID
	LotID     *types.ID
	SectionID *types.ID
	SpotID    *types.ID
	Notes     *string
	PhotoURL  *string
	IsActive  bool
	CreatedAt time.Time

	// Joined display data, populated on reads.
	Lot     *LotRef
	Section *SectionRef
}

// LotRef is the slice of a parking lot needed to label a saved location.
type LotRef struct {
	ID       types.ID
	Name     string
	Code     string
	Position types.Point
}

// SectionRef labels the lot section a car was left in.
type SectionRef struct {
	ID    types.ID
	Name  string
	Code  string
	Level int
}

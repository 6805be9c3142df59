// README: Vehicle garage models.
package vehicle

import (
	"time"

	"kerb/internal/types"
)

type Vehicle struct {
	ID        types.ID
	OwnerID   types.ID
	Plate     string
	Nickname  *string
	Make      *string
	Model     *string
	Color     *string
	IsDefault bool
	CreatedAt time.Time
}

// README: Lot catalog service; read-only lot and section listings.
package lot

import (
	"context"
	"errors"

	"kerb/internal/types"
)

var ErrNotFound = errors.New("lot not found")

type Store interface {
	ActiveLots(ctx context.Context) ([]Lot, error)
	LotByID(ctx context.Context, id types.ID) (*Lot, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Lots returns active lots ordered by name, sections and tiers joined.
func (s *Service) Lots(ctx context.Context) ([]Lot, error) {
	return s.store.ActiveLots(ctx)
}

func (s *Service) Lot(ctx context.Context, id types.ID) (*Lot, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.store.LotByID(ctx, id)
}

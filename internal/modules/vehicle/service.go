// README: Vehicle garage service; list, add with default demotion, delete.
package vehicle

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"kerb/internal/types"
)

var (
	ErrNotFound   = errors.New("vehicle not found")
	ErrBadRequest = errors.New("invalid vehicle request")
)

// Store persists the garage. ClearDefault and Insert run in one transaction
// inside InsertDefault so exactly one default survives the add path.
type Store interface {
	ListByOwner(ctx context.Context, owner types.ID) ([]Vehicle, error)
	Insert(ctx context.Context, v Vehicle) error
	InsertDefault(ctx context.Context, v Vehicle) error
	Delete(ctx context.Context, owner, id types.ID) error
}

type Service struct {
	store Store
	nowFn func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, nowFn: time.Now}
}

type AddCommand struct {
	OwnerID   types.ID
	Plate     string
	Nickname  *string
	Make      *string
	Model     *string
	Color     *string
	IsDefault bool
}

// List returns the owner's vehicles, default first, then newest.
func (s *Service) List(ctx context.Context, owner types.ID) ([]Vehicle, error) {
	if owner == "" {
		return nil, ErrBadRequest
	}
	return s.store.ListByOwner(ctx, owner)
}

// Add registers a vehicle. Adding a new default demotes the prior default in
// the same store operation, so the owner never holds two defaults.
func (s *Service) Add(ctx context.Context, cmd AddCommand) (*Vehicle, error) {
	if cmd.OwnerID == "" || strings.TrimSpace(cmd.Plate) == "" {
		return nil, ErrBadRequest
	}
	v := Vehicle{
		ID:        newID(),
		OwnerID:   cmd.OwnerID,
		Plate:     strings.ToUpper(strings.TrimSpace(cmd.Plate)),
		Nickname:  cmd.Nickname,
		Make:      cmd.Make,
		Model:     cmd.Model,
		Color:     cmd.Color,
		IsDefault: cmd.IsDefault,
		CreatedAt: s.nowFn().UTC(),
	}
	var err error
	if v.IsDefault {
		err = s.store.InsertDefault(ctx, v)
	} else {
		err = s.store.Insert(ctx, v)
	}
	if err != nil {
		return nil, fmt.Errorf("add vehicle: %w", err)
	}
	return &v, nil
}

func (s *Service) Delete(ctx context.Context, owner, id types.ID) error {
	if owner == "" || id == "" {
		return ErrBadRequest
	}
	return s.store.Delete(ctx, owner, id)
}

func newID() types.ID {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return types.ID(hex.EncodeToString(b))
}

// README: Pricing tier store backed by PostgreSQL.
package pricing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kerb/internal/types"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) TierByID(ctx context.Context, id types.ID) (*Tier, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, parking_lot_id, name, description, price_per_hour, daily_max,
               currency, is_active, valid_from, valid_until, created_at
        FROM pricing_tiers
        WHERE id = $1`, string(id),
	)

	var t Tier
	var description sql.NullString
	var dailyCap sql.NullFloat64
	var validUntil sql.NullTime

	err := row.Scan(
		&t.ID, &t.LotID, &t.Name, &description, &t.HourlyRate, &dailyCap,
		&t.Currency, &t.IsActive, &t.ValidFrom, &validUntil, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidTier
	}
	if err != nil {
		return nil, err
	}

	if description.Valid {
		t.Description = &description.String
	}
	if dailyCap.Valid {
		v := dailyCap.Float64
		t.DailyCap = &v
	}
	if validUntil.Valid {
		v := validUntil.Time
		t.ValidUntil = &v
	}
	return &t, nil
}

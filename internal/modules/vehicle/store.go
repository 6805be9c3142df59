// README: Vehicle store backed by Postgres.
package vehicle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kerb/internal/types"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const vehicleColumns = `id, user_id, license_plate, nickname, make, model, color, is_default, created_at`

func (s *PostgresStore) ListByOwner(ctx context.Context, owner types.ID) ([]Vehicle, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Insert(ctx context.Context, v Vehicle) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO vehicles (id, user_id, license_plate, nickname, make, model, color, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(v.ID), string(v.OwnerID), v.Plate, v.Nickname, v.Make, v.Model, v.Color, v.IsDefault, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// InsertDefault demotes the owner's current default and inserts the new
// vehicle as default, atomically.
func (s *PostgresStore) InsertDefault(ctx context.Context, v Vehicle) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert default vehicle: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE vehicles SET is_default = FALSE
		WHERE user_id = $1 AND is_default`, string(v.OwnerID)); err != nil {
		return fmt.Errorf("demote default vehicle: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO vehicles (id, user_id, license_plate, nickname, make, model, color, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)`,
		string(v.ID), string(v.OwnerID), v.Plate, v.Nickname, v.Make, v.Model, v.Color, v.CreatedAt); err != nil {
		return fmt.Errorf("insert default vehicle: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Delete(ctx context.Context, owner, id types.ID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM vehicles WHERE id = $1 AND user_id = $2`, string(id), string(owner))
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var (
		v                            Vehicle
		id, owner                    string
		nickname, mk, mdl, color     sql.NullString
	)
	err := row.Scan(&id, &owner, &v.Plate, &nickname, &mk, &mdl, &color, &v.IsDefault, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, ErrNotFound
	}
	if err != nil {
		return Vehicle{}, fmt.Errorf("scan vehicle: %w", err)
	}
	v.ID = types.ID(id)
	v.OwnerID = types.ID(owner)
	v.Nickname = nullStringPtr(nickname)
	v.Make = nullStringPtr(mk)
	v.Model = nullStringPtr(mdl)
	v.Color = nullStringPtr(color)
	return v, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

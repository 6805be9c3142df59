// README: Lot catalog store backed by PostgreSQL.
package lot

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
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ActiveLots(ctx context.Context) ([]Lot, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, code, address, location_lat, location_lng, is_active, created_at
        FROM parking_lots
        WHERE is_active
        ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var lots []Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range lots {
		if err := s.attachChildren(ctx, &lots[i]); err != nil {
			return nil, err
		}
	}
	return lots, nil
}

func (s *PostgresStore) LotByID(ctx context.Context, id types.ID) (*Lot, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, name, code, address, location_lat, location_lng, is_active, created_at
        FROM parking_lots
        WHERE id = $1`, string(id))
	l, err := scanLot(row)
	if err != nil {
		return nil, err
	}
	if err := s.attachChildren(ctx, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) attachChildren(ctx context.Context, l *Lot) error {
	rows, err := s.db.Query(ctx, `
        SELECT sec.id, sec.parking_lot_id, sec.name, sec.code, sec.level,
               COUNT(sp.id), COUNT(sp.id) FILTER (WHERE NOT sp.is_occupied)
        FROM parking_sections sec
        LEFT JOIN parking_spots sp ON sp.section_id = sec.id
        WHERE sec.parking_lot_id = $1
        GROUP BY sec.id, sec.parking_lot_id, sec.name, sec.code, sec.level
        ORDER BY sec.level, sec.name`, string(l.ID))
	if err != nil {
		return fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			sec          Section
			secID, lotID string
		)
		if err := rows.Scan(&secID, &lotID, &sec.Name, &sec.Code, &sec.Level, &sec.TotalSpots, &sec.FreeSpots); err != nil {
			return fmt.Errorf("scan section: %w", err)
		}
		sec.ID = types.ID(secID)
		sec.LotID = types.ID(lotID)
		l.Sections = append(l.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tierRows, err := s.db.Query(ctx, `
        SELECT id, name, price_per_hour, daily_max, currency
        FROM pricing_tiers
        WHERE parking_lot_id = $1 AND is_active
        ORDER BY price_per_hour`, string(l.ID))
	if err != nil {
		return fmt.Errorf("list lot tiers: %w", err)
	}
	defer tierRows.Close()
	for tierRows.Next() {
		var (
			t      Tier
			tierID string
			cap    sql.NullFloat64
		)
		if err := tierRows.Scan(&tierID, &t.Name, &t.HourlyRate, &cap, &t.Currency); err != nil {
			return fmt.Errorf("scan lot tier: %w", err)
		}
		t.ID = types.ID(tierID)
		if cap.Valid {
			t.DailyCap = &cap.Float64
		}
		l.Tiers = append(l.Tiers, t)
	}
	return tierRows.Err()
}

func scanLot(row pgx.Row) (Lot, error) {
	var (
		l       Lot
		id      string
		address sql.NullString
	)
	err := row.Scan(&id, &l.Name, &l.Code, &address, &l.Position.Lat, &l.Position.Lng, &l.IsActive, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lot{}, ErrNotFound
	}
	if err != nil {
		return Lot{}, fmt.Errorf("scan lot: %w", err)
	}
	l.ID = types.ID(id)
	if address.Valid {
		l.Address = &address.String
	}
	return l, nil
}

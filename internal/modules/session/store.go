// README: Parking session store backed by PostgreSQL.
package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kerb/internal/modules/pricing"
	"kerb/internal/types"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const sessionColumns = `
        s.id, s.user_id, s.vehicle_id, s.parking_spot_id, s.pricing_tier_id,
        s.session_status, s.started_at, s.expires_at, s.ended_at,
        s.total_amount, s.currency, s.qr_code, s.license_plate_entry, s.created_at,
        v.id, v.license_plate, v.make, v.model, v.color, v.nickname,
        pt.id, pt.parking_lot_id, pt.name, pt.description, pt.price_per_hour, pt.daily_max,
        pt.currency, pt.is_active, pt.valid_from, pt.valid_until, pt.created_at,
        sp.id, sp.spot_number,
        sec.id, sec.name, sec.code, sec.level,
        pl.id, pl.name, pl.code`

const sessionJoins = `
        FROM parking_sessions s
        LEFT JOIN vehicles v ON v.id = s.vehicle_id
        LEFT JOIN pricing_tiers pt ON pt.id = s.pricing_tier_id
        LEFT JOIN parking_spots sp ON sp.id = s.parking_spot_id
        LEFT JOIN parking_sections sec ON sec.id = sp.section_id
        LEFT JOIN parking_lots pl ON pl.id = sec.parking_lot_id`

func (s *PostgresStore) Insert(ctx context.Context, sess *Session) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO parking_sessions (
            id, user_id, vehicle_id, parking_spot_id, pricing_tier_id,
            session_status, started_at, expires_at, ended_at,
            total_amount, currency, qr_code, license_plate_entry, created_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9,
            $10, $11, $12, $13, $14
        )`,
		string(sess.ID),
		string(sess.OwnerID),
		idToStringPtr(sess.VehicleID),
		idToStringPtr(sess.SpotID),
		idToStringPtr(sess.TierID),
		string(sess.Status),
		sess.StartedAt,
		sess.ExpiresAt,
		sess.EndedAt,
		sess.Accrued.Amount,
		sess.Accrued.Currency,
		sess.Token,
		sess.PlateEntry,
		sess.CreatedAt,
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Session, error) {
	row := s.db.QueryRow(ctx, `
        SELECT`+sessionColumns+sessionJoins+`
        WHERE s.id = $1`, string(id),
	)
	return scanSession(row)
}

func (s *PostgresStore) SetExtension(ctx context.Context, id types.ID, expiresAt time.Time, accrued float64) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE parking_sessions
        SET expires_at = $2,
            total_amount = $3
        WHERE id = $1 AND session_status = 'active'`,
		string(id), expiresAt, accrued,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetEnded(ctx context.Context, id types.ID, status Status, endedAt time.Time) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE parking_sessions
        SET session_status = $2,
            ended_at = $3
        WHERE id = $1 AND session_status = 'active'`,
		string(id), string(status), endedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ActiveByOwner(ctx context.Context, owner types.ID) ([]*Session, error) {
	rows, err := s.db.Query(ctx, `
        SELECT`+sessionColumns+sessionJoins+`
        WHERE s.user_id = $1 AND s.session_status = 'active'
        ORDER BY s.started_at DESC`, string(owner),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

type pgxRow interface {
	Scan(dest ...any) error
}

func scanSession(row pgxRow) (*Session, error) {
	var sess Session
	var vehicleID, spotID, tierID sql.NullString
	var endedAt sql.NullTime
	var plateEntry sql.NullString

	var jVehID, jVehPlate, jVehMake, jVehModel, jVehColor, jVehNick sql.NullString
	var jTierID, jTierLot, jTierName, jTierDesc, jTierCurrency sql.NullString
	var jTierRate, jTierCap sql.NullFloat64
	var jTierActive sql.NullBool
	var jTierFrom, jTierUntil, jTierCreated sql.NullTime
	var jSpotID, jSpotNumber sql.NullString
	var jSecID, jSecName, jSecCode sql.NullString
	var jSecLevel sql.NullInt64
	var jLotID, jLotName, jLotCode sql.NullString

	err := row.Scan(
		&sess.ID, &sess.OwnerID, &vehicleID, &spotID, &tierID,
		&sess.Status, &sess.StartedAt, &sess.ExpiresAt, &endedAt,
		&sess.Accrued.Amount, &sess.Accrued.Currency, &sess.Token, &plateEntry, &sess.CreatedAt,
		&jVehID, &jVehPlate, &jVehMake, &jVehModel, &jVehColor, &jVehNick,
		&jTierID, &jTierLot, &jTierName, &jTierDesc, &jTierRate, &jTierCap,
		&jTierCurrency, &jTierActive, &jTierFrom, &jTierUntil, &jTierCreated,
		&jSpotID, &jSpotNumber,
		&jSecID, &jSecName, &jSecCode, &jSecLevel,
		&jLotID, &jLotName, &jLotCode,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sess.VehicleID = nullIDPtr(vehicleID)
	sess.SpotID = nullIDPtr(spotID)
	sess.TierID = nullIDPtr(tierID)
	if endedAt.Valid {
		t := endedAt.Time
		sess.EndedAt = &t
	}
	if plateEntry.Valid {
		sess.PlateEntry = &plateEntry.String
	}

	if jVehID.Valid {
		sess.Vehicle = &VehicleRef{
			ID:       types.ID(jVehID.String),
			Plate:    jVehPlate.String,
			Make:     nullStringPtr(jVehMake),
			Model:    nullStringPtr(jVehModel),
			Color:    nullStringPtr(jVehColor),
			Nickname: nullStringPtr(jVehNick),
		}
	}
	if jTierID.Valid {
		tier := &pricing.Tier{
			ID:         types.ID(jTierID.String),
			LotID:      types.ID(jTierLot.String),
			Name:       jTierName.String,
			HourlyRate: jTierRate.Float64,
			Currency:   jTierCurrency.String,
			IsActive:   jTierActive.Bool,
			ValidFrom:  jTierFrom.Time,
			CreatedAt:  jTierCreated.Time,
		}
		tier.Description = nullStringPtr(jTierDesc)
		if jTierCap.Valid {
			v := jTierCap.Float64
			tier.DailyCap = &v
		}
		if jTierUntil.Valid {
			v := jTierUntil.Time
			tier.ValidUntil = &v
		}
		sess.Tier = tier
	}
	if jSpotID.Valid {
		sess.Spot = &SpotRef{
			ID:          types.ID(jSpotID.String),
			Number:      jSpotNumber.String,
			SectionID:   types.ID(jSecID.String),
			SectionName: jSecName.String,
			SectionCode: jSecCode.String,
			Level:       int(jSecLevel.Int64),
			LotID:       types.ID(jLotID.String),
			LotName:     jLotName.String,
			LotCode:     jLotCode.String,
		}
	}
	return &sess, nil
}

func idToStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullIDPtr(v sql.NullString) *types.ID {
	if !v.Valid {
		return nil
	}
	id := types.ID(v.String)
	return &id
}

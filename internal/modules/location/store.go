// README: Saved-location store backed by PostgreSQL.
package location

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

const savedLocationColumns = `
        sl.id, sl.user_id, sl.latitude, sl.longitude, sl.accuracy, sl.altitude, sl.heading,
        sl.parking_session_id, sl.parking_lot_id, sl.section_id, sl.spot_id,
        sl.notes, sl.photo_url, sl.is_active, sl.created_at,
        pl.id, pl.name, pl.code, pl.location_lat, pl.location_lng,
        ps.id, ps.name, ps.code, ps.level`

const savedLocationJoins = `
        FROM saved_locations sl
        LEFT JOIN parking_lots pl ON pl.id = sl.parking_lot_id
        LEFT JOIN parking_sections ps ON ps.id = sl.section_id`

func (s *PostgresStore) ActiveByOwner(ctx context.Context, owner types.ID) (*SavedLocation, error) {
	row := s.db.QueryRow(ctx, `
        SELECT`+savedLocationColumns+savedLocationJoins+`
        WHERE sl.user_id = $1 AND sl.is_active
        ORDER BY sl.created_at DESC
        LIMIT 1`, string(owner),
	)
	return scanSavedLocation(row)
}

func (s *PostgresStore) DeactivateActive(ctx context.Context, owner types.ID) error {
	_, err := s.db.Exec(ctx, `
        UPDATE saved_locations
        SET is_active = FALSE
        WHERE user_id = $1 AND is_active`, string(owner),
	)
	return err
}

func (s *PostgresStore) Insert(ctx context.Context, loc *SavedLocation) (*SavedLocation, error) {
	_, err := s.db.Exec(ctx, `
        INSERT INTO saved_locations (
            id, user_id, latitude, longitude, accuracy, altitude, heading,
            parking_session_id, parking_lot_id, section_id, spot_id,
            notes, photo_url, is_active, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7,
            $8, $9, $10, $11,
            $12, $13, $14, $15
        )`,
		string(loc.ID),
		string(loc.OwnerID),
		loc.Position.Latitude, loc.Position.Longitude,
		loc.Position.Accuracy, loc.Position.Altitude, loc.Position.Heading,
		idToStringPtr(loc.SessionID),
		idToStringPtr(loc.LotID),
		idToStringPtr(loc.SectionID),
		idToStringPtr(loc.SpotID),
		loc.Notes, loc.PhotoURL,
		loc.IsActive,
		loc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Re-read so the returned record carries the lot/section joins.
	row := s.db.QueryRow(ctx, `
        SELECT`+savedLocationColumns+savedLocationJoins+`
        WHERE sl.id = $1`, string(loc.ID),
	)
	return scanSavedLocation(row)
}

func (s *PostgresStore) Patch(ctx context.Context, owner, id types.ID, patch Patch) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE saved_locations
        SET notes = COALESCE($3, notes),
            photo_url = COALESCE($4, photo_url),
            parking_session_id = COALESCE($5, parking_session_id),
            spot_id = COALESCE($6, spot_id)
        WHERE id = $1 AND user_id = $2`,
		string(id),
		string(owner),
		patch.Notes,
		patch.PhotoURL,
		idToStringPtr(patch.SessionID),
		idToStringPtr(patch.SpotID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, owner, id types.ID) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE saved_locations
        SET is_active = FALSE
        WHERE id = $1 AND user_id = $2`, string(id), string(owner),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type pgxRow interface {
	Scan(dest ...any) error
}

func scanSavedLocation(row pgxRow) (*SavedLocation, error) {
	var loc SavedLocation
	var accuracy, altitude, heading sql.NullFloat64
	var sessionID, lotID, sectionID, spotID sql.NullString
	var notes, photoURL sql.NullString
	var jLotID, jLotName, jLotCode sql.NullString
	var jLotLat, jLotLng sql.NullFloat64
	var jSecID, jSecName, jSecCode sql.NullString
	var jSecLevel sql.NullInt64

	err := row.Scan(
		&loc.ID, &loc.OwnerID,
		&loc.Position.Latitude, &loc.Position.Longitude,
		&accuracy, &altitude, &heading,
		&sessionID, &lotID, &sectionID, &spotID,
		&notes, &photoURL, &loc.IsActive, &loc.CreatedAt,
		&jLotID, &jLotName, &jLotCode, &jLotLat, &jLotLng,
		&jSecID, &jSecName, &jSecCode, &jSecLevel,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	loc.Position.Accuracy = nullFloatPtr(accuracy)
	loc.Position.Altitude = nullFloatPtr(altitude)
	loc.Position.Heading = nullFloatPtr(heading)
	loc.SessionID = nullIDPtr(sessionID)
	loc.LotID = nullIDPtr(lotID)
	loc.SectionID = nullIDPtr(sectionID)
	loc.SpotID = nullIDPtr(spotID)
	loc.Notes = nullStringPtr(notes)
	loc.PhotoURL = nullStringPtr(photoURL)

	if jLotID.Valid {
		loc.Lot = &LotRef{
			ID:       types.ID(jLotID.String),
			Name:     jLotName.String,
			Code:     jLotCode.String,
			Position: types.Point{Lat: jLotLat.Float64, Lng: jLotLng.Float64},
		}
	}
	if jSecID.Valid {
		loc.Section = &SectionRef{
			ID:    types.ID(jSecID.String),
			Name:  jSecName.String,
			Code:  jSecCode.String,
			Level: int(jSecLevel.Int64),
		}
	}
	return &loc, nil
}

func idToStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
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

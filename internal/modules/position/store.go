// README: Position store backed by Redis GEO and per-owner hashes.
package position

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"kerb/internal/types"
)

const (
	ownerGeoKey      = "position:owners"
	lastFixKeyPrefix = "position:owner:%s:last_fix"
	// TTL for last-fix hashes; a fix older than a day is useless for locating a car.
	lastFixTTL = 24 * time.Hour
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// RecordFix mirrors an accepted device fix: the GEO set for proximity queries
// and a per-owner hash carrying the full reading.
func (s *Store) RecordFix(ctx context.Context, owner types.ID, pos types.GeoPosition, at time.Time) error {
	pipe := s.redis.Pipeline()
	pipe.GeoAdd(ctx, ownerGeoKey, &redis.GeoLocation{
		Name:      string(owner),
		Longitude: pos.Longitude,
		Latitude:  pos.Latitude,
	})
	key := lastFixKey(owner)
	fields := map[string]interface{}{
		"lat":            strconv.FormatFloat(pos.Latitude, 'f', -1, 64),
		"lng":            strconv.FormatFloat(pos.Longitude, 'f', -1, 64),
		"recorded_at_ms": strconv.FormatInt(at.UnixMilli(), 10),
	}
	if pos.Accuracy != nil {
		fields["accuracy"] = strconv.FormatFloat(*pos.Accuracy, 'f', -1, 64)
	}
	if pos.Heading != nil {
		fields["heading"] = strconv.FormatFloat(*pos.Heading, 'f', -1, 64)
	}
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, lastFixTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// LastFix returns the owner's most recent recorded fix, and whether one exists.
func (s *Store) LastFix(ctx context.Context, owner types.ID) (types.GeoPosition, time.Time, bool, error) {
	vals, err := s.redis.HGetAll(ctx, lastFixKey(owner)).Result()
	if err != nil {
		return types.GeoPosition{}, time.Time{}, false, err
	}
	if len(vals) == 0 {
		return types.GeoPosition{}, time.Time{}, false, nil
	}

	var pos types.GeoPosition
	if pos.Latitude, err = strconv.ParseFloat(vals["lat"], 64); err != nil {
		return types.GeoPosition{}, time.Time{}, false, fmt.Errorf("parse last fix lat: %w", err)
	}
	if pos.Longitude, err = strconv.ParseFloat(vals["lng"], 64); err != nil {
		return types.GeoPosition{}, time.Time{}, false, fmt.Errorf("parse last fix lng: %w", err)
	}
	if v, ok := vals["accuracy"]; ok {
		acc, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return types.GeoPosition{}, time.Time{}, false, fmt.Errorf("parse last fix accuracy: %w", err)
		}
		pos.Accuracy = &acc
	}
	if v, ok := vals["heading"]; ok {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return types.GeoPosition{}, time.Time{}, false, fmt.Errorf("parse last fix heading: %w", err)
		}
		pos.Heading = &h
	}
	ms, err := strconv.ParseInt(vals["recorded_at_ms"], 10, 64)
	if err != nil {
		return types.GeoPosition{}, time.Time{}, false, fmt.Errorf("parse last fix timestamp: %w", err)
	}
	return pos, time.UnixMilli(ms).UTC(), true, nil
}

// NearbyOwners returns owners whose last fix falls inside the radius, nearest
// first.
func (s *Store) NearbyOwners(ctx context.Context, p types.Point, radiusKm float64) ([]types.ID, error) {
	results, err := s.redis.GeoSearch(ctx, ownerGeoKey, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(results))
	for i, r := range results {
		ids[i] = types.ID(r)
	}
	return ids, nil
}

func lastFixKey(owner types.ID) string {
	return fmt.Sprintf(lastFixKeyPrefix, string(owner))
}

package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"kerb/internal/types"
)

// WalkService handles interactions with the Google Maps Directions API.
type WalkService struct {
	client *maps.Client
}

// NewWalkService creates a new WalkService with the given API key.
func NewWalkService(apiKey string) (*WalkService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &WalkService{client: client}, nil
}

// WalkEstimate returns the routed walking duration and distance in meters
// from origin to destination. Callers fall back to the straight-line
// estimate when this fails; a missing route is an error, not a zero.
func (s *WalkService) WalkEstimate(ctx context.Context, origin, destination types.Point) (time.Duration, int, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", destination.Lat, destination.Lng),
		Mode:        maps.TravelModeWalking,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, 0, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return leg.Duration, leg.Distance.Meters, nil
}

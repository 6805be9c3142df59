package location

import (
	"math"
	"testing"

	"kerb/internal/types"
)

func TestDistanceMeters_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      types.Point
		wantM     float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         types.Point{Lat: 28.4177, Lng: -81.5812},
			b:         types.Point{Lat: 28.4177, Lng: -81.5812},
			wantM:     0,
			tolerance: 0.001,
		},
		{
			name:      "across a large parking lot (~170m)",
			a:         types.Point{Lat: 28.4177, Lng: -81.5812},
			b:         types.Point{Lat: 28.4190, Lng: -81.5800},
			wantM:     170,
			tolerance: 5,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			a:         types.Point{Lat: 40.7128, Lng: -74.0060},
			b:         types.Point{Lat: 34.0522, Lng: -118.2437},
			wantM:     3944000,
			tolerance: 50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.a, tt.b)
			if math.Abs(got-tt.wantM) > tt.tolerance {
				t.Errorf("DistanceMeters() = %f, want %f (±%f)", got, tt.wantM, tt.tolerance)
			}
			if got < 0 {
				t.Errorf("DistanceMeters() = %f, want non-negative", got)
			}
		})
	}
}

func TestDistanceMeters_Symmetry(t *testing.T) {
	a := types.Point{Lat: 28.41, Lng: -81.58}
	b := types.Point{Lat: 28.43, Lng: -81.55}
	d1 := DistanceMeters(a, b)
	d2 := DistanceMeters(b, a)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("distance is not symmetric: %f vs %f", d1, d2)
	}
}

func TestWalkMinutes(t *testing.T) {
	tests := []struct {
		distanceM float64
		want      int
	}{
		{0, 0},
		{40, 1},   // rounds up from 0.5
		{79, 1},
		{800, 10}, // 80 m/min pace
		{1000, 13}, // 12.5 rounds away from zero
	}
	for _, tt := range tests {
		if got := WalkMinutes(tt.distanceM); got != tt.want {
			t.Errorf("WalkMinutes(%f) = %d, want %d", tt.distanceM, got, tt.want)
		}
	}
}

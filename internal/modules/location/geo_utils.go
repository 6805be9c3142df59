// Package location — geo_utils contains pure geographic computation helpers.
package location

import (
	"math"

	"kerb/internal/types"
)

const earthRadiusM = 6371000.0

// averageWalkSpeedMPerMin is the fixed walking-pace assumption (~4.8 km/h)
// behind the "minutes to your car" estimate.
const averageWalkSpeedMPerMin = 80.0

// DistanceMeters returns the great-circle distance in meters between two
// points specified in decimal degrees. Symmetric, non-negative, and zero
// for identical points.
func DistanceMeters(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}

// WalkMinutes estimates walking time in whole minutes for a straight-line
// distance in meters.
func WalkMinutes(distanceMeters float64) int {
	return int(math.Round(distanceMeters / averageWalkSpeedMPerMin))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

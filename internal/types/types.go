// README: Shared identifier and coordinate value objects.
package types

// ID is an opaque entity identifier. Owner IDs come from the token
// verifier; entity IDs are generated by the stores or services.
type ID string

// Point is a bare WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// GeoPosition is a normalized device fix. It is transient: produced by the
// position source, consumed by geo math and by the location ledger's save
// path, never persisted on its own.
type GeoPosition struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Altitude  *float64
	Heading   *float64
}

// Point collapses a fix to its coordinate pair.
func (g GeoPosition) Point() Point {
	return Point{Lat: g.Latitude, Lng: g.Longitude}
}

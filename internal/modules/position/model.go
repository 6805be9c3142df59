// README: Device geolocation collaborator contract and fix records.
package position

import (
	"context"
	"errors"
	"time"

	"kerb/internal/types"
)

var (
	ErrUnavailable = errors.New("geolocation unavailable")
	ErrDenied      = errors.New("geolocation permission denied")
	ErrTimeout     = errors.New("geolocation timed out")
)

// Fix is one reading delivered by a watch subscription. Err is set when the
// device reported a failure for this delivery; the subscription itself stays
// live.
type Fix struct {
	Position types.GeoPosition
	At       time.Time
	Err      error
}

// FixOptions tune a position request the way a browser geolocation call
// would: a bounded wait and a tolerance for cached fixes.
type FixOptions struct {
	Timeout      time.Duration
	MaximumAge   time.Duration
	HighAccuracy bool
}

// Provider is the device location capability. Implementations wrap whatever
// the platform offers; the source never talks to hardware directly.
// CurrentPosition must honor ctx cancellation. Watch returns a fix channel
// and a cancel func that closes it.
type Provider interface {
	CurrentPosition(ctx context.Context, opts FixOptions) (types.GeoPosition, error)
	Watch(ctx context.Context, opts FixOptions) (<-chan Fix, func(), error)
}

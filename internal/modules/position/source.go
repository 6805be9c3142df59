// README: Position source; one-shot fixes, a single owned watch, and connectivity state.
package position

import (
	"context"
	"errors"
	"sync"
	"time"

	"kerb/internal/metrics"
	"kerb/internal/types"
)

const (
	// defaultFixTimeout bounds a one-shot request so it resolves to a
	// failure instead of hanging.
	defaultFixTimeout = 10 * time.Second
	// oneShotMaxFixAge is the cached-fix tolerance for a one-shot request.
	oneShotMaxFixAge = time.Minute
	// watchMaxFixAge keeps a continuous subscription fresh.
	watchMaxFixAge = 5 * time.Second
)

// FixRecorder mirrors accepted fixes into shared storage so other processes
// can read an owner's last known position. Recording is best effort and
// never fails the caller.
type FixRecorder interface {
	RecordFix(ctx context.Context, owner types.ID, pos types.GeoPosition, at time.Time) error
}

// Source wraps the device location capability for one owner. It tracks the
// last known position, the last geolocation error, and an advisory
// online/offline signal. At most one watch is live per Source; the watch is
// an owned resource the caller must Stop.
type Source struct {
	provider   Provider
	recorder   FixRecorder
	owner      types.ID
	fixTimeout time.Duration
	nowFn      func() time.Time

	mu      sync.Mutex
	watch   *Watch
	current *types.GeoPosition
	lastErr string
	online  bool
}

func NewSource(provider Provider, recorder FixRecorder, owner types.ID) *Source {
	return &Source{
		provider:   provider,
		recorder:   recorder,
		owner:      owner,
		fixTimeout: defaultFixTimeout,
		nowFn:      time.Now,
		online:     true,
	}
}

// GetCurrentPosition issues a single bounded request. Denial and timeout are
// reported as sentinel errors, never panics; a failure leaves the last known
// position untouched and records the message for passive display.
func (s *Source) GetCurrentPosition(ctx context.Context) (types.GeoPosition, error) {
	if s.provider == nil {
		s.fail(ErrUnavailable)
		return types.GeoPosition{}, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.fixTimeout)
	defer cancel()

	pos, err := s.provider.CurrentPosition(ctx, FixOptions{
		Timeout:      s.fixTimeout,
		MaximumAge:   oneShotMaxFixAge,
		HighAccuracy: true,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		s.fail(err)
		return types.GeoPosition{}, err
	}

	s.accept(pos)
	return pos, nil
}

// StartWatching establishes the continuous subscription and returns the
// owned watch handle. Calling it while a watch is live returns that watch
// unchanged, so acquisition is idempotent and at most one device
// subscription exists.
func (s *Source) StartWatching(ctx context.Context) (*Watch, error) {
	if s.provider == nil {
		s.fail(ErrUnavailable)
		return nil, ErrUnavailable
	}

	s.mu.Lock()
	if s.watch != nil {
		w := s.watch
		s.mu.Unlock()
		return w, nil
	}
	s.mu.Unlock()

	fixes, stop, err := s.provider.Watch(ctx, FixOptions{
		Timeout:      s.fixTimeout,
		MaximumAge:   watchMaxFixAge,
		HighAccuracy: true,
	})
	if err != nil {
		s.fail(err)
		return nil, err
	}

	w := &Watch{source: s, cancel: stop}

	s.mu.Lock()
	if s.watch != nil {
		// Lost the race to another starter; release ours and defer to the
		// established watch.
		existing := s.watch
		s.mu.Unlock()
		stop()
		return existing, nil
	}
	s.watch = w
	s.mu.Unlock()

	go s.consume(w, fixes)
	return w, nil
}

func (s *Source) consume(w *Watch, fixes <-chan Fix) {
	for fix := range fixes {
		if fix.Err != nil {
			s.fail(fix.Err)
			continue
		}
		s.accept(fix.Position)
	}
	// Provider closed the stream; release the handle if it is still ours.
	s.release(w)
}

// IsWatching reports whether a subscription is live.
func (s *Source) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watch != nil
}

// Current returns the last known position, if any fix has been accepted.
func (s *Source) Current() (types.GeoPosition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return types.GeoPosition{}, false
	}
	return *s.current, true
}

// SetOnline records the environment's connectivity signal. Advisory only:
// it gates nothing, consumers use it for messaging.
func (s *Source) SetOnline(online bool) {
	s.mu.Lock()
	s.online = online
	s.mu.Unlock()
}

func (s *Source) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *Source) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Source) accept(pos types.GeoPosition) {
	now := s.nowFn()
	s.mu.Lock()
	p := pos
	s.current = &p
	s.lastErr = ""
	s.mu.Unlock()

	if s.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.recorder.RecordFix(ctx, s.owner, pos, now)
	}
}

func (s *Source) release(w *Watch) {
	s.mu.Lock()
	if s.watch == w {
		s.watch = nil
	}
	s.mu.Unlock()
}

// fail records a geolocation failure for passive display and counts it by
// kind.
func (s *Source) fail(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
	metrics.PositionErrors.WithLabelValues(errKind(err)).Inc()
}

func errKind(err error) string {
	switch {
	case errors.Is(err, ErrDenied):
		return "denied"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}

// Watch is the owned handle for a live subscription. Stop cancels the
// device subscription and releases the single-watch slot; stopping twice is
// harmless.
type Watch struct {
	source *Source
	cancel func()
	once   sync.Once
}

func (w *Watch) Stop() {
	w.once.Do(func() {
		w.cancel()
		w.source.release(w)
	})
}

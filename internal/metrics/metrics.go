package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Request metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kerb_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kerb_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Session metrics
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kerb_sessions_started_total",
			Help: "Total parking sessions created",
		},
	)

	SessionsExtended = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kerb_sessions_extended_total",
			Help: "Total parking session extensions",
		},
	)

	SessionsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kerb_sessions_ended_total",
			Help: "Total parking sessions ended",
		},
		[]string{"status"},
	)

	// Location metrics
	LocationsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kerb_locations_saved_total",
			Help: "Total car locations saved",
		},
	)

	LocationCacheFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kerb_location_cache_fallbacks_total",
			Help: "Active-location reads served from the offline cache",
		},
	)

	// Position metrics
	PositionFixesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kerb_position_fixes_recorded_total",
			Help: "Device fixes accepted and mirrored to storage",
		},
	)

	PositionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kerb_position_errors_total",
			Help: "Geolocation failures by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		SessionsStarted,
		SessionsExtended,
		SessionsEnded,
		LocationsSaved,
		LocationCacheFallbacks,
		PositionFixesRecorded,
		PositionErrors,
	)
}

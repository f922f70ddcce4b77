package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// CacheHitsTotal counts complaint-cache reads served without a store query.
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "publicpulse",
		Subsystem: "portal",
		Name:      "cache_hits_total",
		Help:      "Total number of complaint reads served from the in-process cache.",
	})

	// CacheMissesTotal counts complaint reads that had to query the store.
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "publicpulse",
		Subsystem: "portal",
		Name:      "cache_misses_total",
		Help:      "Total number of complaint reads that went to the backing store.",
	})

	// StoreQueriesTotal counts store round-trips by outcome.
	StoreQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "publicpulse",
		Subsystem: "portal",
		Name:      "store_queries_total",
		Help:      "Total number of backing-store queries, labeled by result.",
	}, []string{"result"})

	// StoreQueryDurationSeconds is round-trip time per store query.
	StoreQueryDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "publicpulse",
		Subsystem: "portal",
		Name:      "store_query_duration_seconds",
		Help:      "Time to run one backing-store query.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	// SubmissionsTotal counts accepted complaint submissions.
	SubmissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "publicpulse",
		Subsystem: "portal",
		Name:      "submissions_total",
		Help:      "Total number of complaint submissions accepted.",
	})

	// RefreshEventsTotal counts cache invalidations triggered by broker events.
	RefreshEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "publicpulse",
		Subsystem: "portal",
		Name:      "refresh_events_total",
		Help:      "Total number of cache refreshes triggered by broker messages.",
	})

	// RabbitMQConnected is 1 when the subscriber considers itself connected.
	RabbitMQConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "publicpulse",
		Subsystem: "portal",
		Name:      "rabbitmq_connected",
		Help:      "Whether the RabbitMQ subscriber is currently connected (best-effort).",
	})

	// WebsocketClients is the current number of connected analytics clients.
	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "publicpulse",
		Subsystem: "portal",
		Name:      "websocket_clients",
		Help:      "Current number of connected websocket clients.",
	})
)

// Register registers portal metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			CacheHitsTotal,
			CacheMissesTotal,
			StoreQueriesTotal,
			StoreQueryDurationSeconds,
			SubmissionsTotal,
			RefreshEventsTotal,
			RabbitMQConnected,
			WebsocketClients,
		)
	})
}

func NowUnixSeconds() float64 {
	return float64(time.Now().Unix())
}

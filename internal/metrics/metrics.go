// Package metrics provides the centralized Prometheus registry for the pick engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moto_picks",
		Name:      "prediction_requests_total",
		Help:      "Total number of event prediction requests served",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moto_picks",
		Name:      "cache_hits_total",
		Help:      "Total number of prediction cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moto_picks",
		Name:      "cache_misses_total",
		Help:      "Total number of prediction cache misses",
	})
	CacheInvalidationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moto_picks",
		Name:      "cache_invalidations_total",
		Help:      "Total number of event cache invalidations",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moto_picks",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of live timing circuit breaker trips",
	})
)

// Gauge metrics
var (
	StreamConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "moto_picks",
		Name:      "stream_connected",
		Help:      "Whether the live timing stream is connected (1) or not (0)",
	})
	ActiveModels = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "moto_picks",
		Name:      "active_models",
		Help:      "Number of model artifacts currently loaded",
	})
)

// Histogram metrics
var (
	PredictionRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "moto_picks",
		Name:      "prediction_request_duration_seconds",
		Help:      "Duration of event prediction requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	LiveTimingFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "moto_picks",
		Name:      "live_timing_fetch_duration_seconds",
		Help:      "Duration of live timing API fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionRequestsTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)
		registry.MustRegister(CacheInvalidationsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		// Register gauge metrics
		registry.MustRegister(StreamConnected)
		registry.MustRegister(ActiveModels)

		// Register histogram metrics
		registry.MustRegister(PredictionRequestDuration)
		registry.MustRegister(LiveTimingFetchDuration)

		// Register data source metrics
		registry.MustRegister(LiveTimingRequestsTotal)
		registry.MustRegister(StreamEventsTotal)
		registry.MustRegister(StreamReconnectsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler. Package-local metrics
// registered on the default registry are exposed alongside the central ones.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RecordPredictionRequest records a served event prediction request.
func RecordPredictionRequest(durationSeconds float64) {
	PredictionRequestsTotal.Inc()
	PredictionRequestDuration.Observe(durationSeconds)
}

// RecordCacheHit records a prediction cache hit.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a prediction cache miss.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheInvalidation records an event cache invalidation.
func RecordCacheInvalidation() {
	CacheInvalidationsTotal.Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateStreamConnected updates the stream connection gauge.
func UpdateStreamConnected(connected bool) {
	if connected {
		StreamConnected.Set(1)
	} else {
		StreamConnected.Set(0)
	}
}

// UpdateActiveModels updates the loaded model artifact count.
func UpdateActiveModels(count float64) {
	ActiveModels.Set(count)
}

// RecordLiveTimingFetch records a live timing API fetch.
func RecordLiveTimingFetch(durationSeconds float64) {
	LiveTimingFetchDuration.Observe(durationSeconds)
}

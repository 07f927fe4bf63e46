// Package metrics defines data source specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Data source counter vectors
var (
	LiveTimingRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moto_picks",
		Name:      "live_timing_requests_total",
		Help:      "Total number of live timing API requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	StreamEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moto_picks",
		Name:      "stream_events_total",
		Help:      "Total number of live timing stream events by type",
	}, []string{"event_type"})

	StreamReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moto_picks",
		Name:      "stream_reconnects_total",
		Help:      "Total number of live timing stream reconnect attempts",
	})
)

// RecordLiveTimingRequest records a live timing API request outcome.
func RecordLiveTimingRequest(endpoint, outcome string) {
	LiveTimingRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// RecordStreamEvent records a received stream event.
func RecordStreamEvent(eventType string) {
	StreamEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordStreamReconnect records a stream reconnect attempt.
func RecordStreamReconnect() {
	StreamReconnectsTotal.Inc()
}

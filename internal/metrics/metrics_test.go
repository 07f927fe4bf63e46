package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordPredictionRequest(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPredictionRequest(0.12)
	})
}

func TestCacheCounters(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCacheHit()
		RecordCacheMiss()
		RecordCacheInvalidation()
	})
}

func TestUpdateStreamConnected(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name      string
		connected bool
	}{
		{
			name:      "connected",
			connected: true,
		},
		{
			name:      "disconnected",
			connected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateStreamConnected(tt.connected)
			})
		})
	}
}

func TestUpdateActiveModels(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		count float64
	}{
		{
			name:  "all artifacts loaded",
			count: 4,
		},
		{
			name:  "no artifacts",
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateActiveModels(tt.count)
			})
		})
	}
}

func TestRecordCircuitBreakerTrip(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCircuitBreakerTrip()
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func TestDataSourceMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordLiveTimingRequest("entry_list", "success")
	})

	assert.NotPanics(t, func() {
		RecordStreamEvent("qualifying_update")
	})

	assert.NotPanics(t, func() {
		RecordStreamReconnect()
	})
}

func BenchmarkRecordPredictionRequest(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordPredictionRequest(0.05)
	}
}

func BenchmarkRecordCacheHit(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordCacheHit()
	}
}

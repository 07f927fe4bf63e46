// Package predictor provides Prometheus metrics for the prediction pipeline.
package predictor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictionsTotal tracks predictions by class and path taken
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_riders_total",
			Help: "Total number of rider predictions generated",
		},
		[]string{"bike_class", "mode"}, // mode: model, fallback, dnq, no_history
	)

	// PredictionLatency tracks per-rider prediction latency
	PredictionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Single rider prediction latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)

	// BatchSize tracks the size of batch prediction requests
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_batch_size",
			Help:    "Number of riders per batch prediction",
			Buckets: []float64{10, 20, 40, 60, 80, 120},
		},
	)

	// PredictionFailuresTotal tracks per-rider failures recovered via fallback
	PredictionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of per-rider prediction failures served by the fallback heuristic",
		},
		[]string{"bike_class", "stage"},
	)

	// ModelReloadsTotal tracks model reload attempts
	ModelReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_model_reloads_total",
			Help: "Total number of model reload attempts",
		},
		[]string{"status"}, // success, empty
	)

	// ModelsLoaded exposes which model slots currently hold an artifact
	ModelsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prediction_models_loaded",
			Help: "Whether a model artifact is loaded for a (class, type) slot",
		},
		[]string{"bike_class", "model_type"},
	)
)

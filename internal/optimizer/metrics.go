// Package optimizer provides Prometheus metrics for team solves.
package optimizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SolvesTotal tracks optimization runs by outcome
	SolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimizer_solves_total",
			Help: "Total number of team optimization solves",
		},
		[]string{"outcome"}, // feasible, infeasible
	)

	// SolveDuration tracks solve wall time
	SolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "optimizer_solve_duration_seconds",
			Help:    "Team optimization solve duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)
)

// Package logger provides prediction-pipeline specific logging.
package logger

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for the prediction pipeline.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "predictor"),
	}
}

// LogBatchPrediction logs a completed batch prediction for an event.
func (pl *PredictionLogger) LogBatchPrediction(eventID uuid.UUID, riders int, qualifiers int, modelReady bool, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"event_id":    eventID,
		"riders":      riders,
		"qualifiers":  qualifiers,
		"model_ready": modelReady,
		"latency_ms":  latencyMs,
	}).Info("Batch prediction completed")
}

// LogModelReload logs a model set reload.
func (pl *PredictionLogger) LogModelReload(qualificationModels, finishModels int, ready bool) {
	pl.WithFields(logrus.Fields{
		"qualification_models":   qualificationModels,
		"finish_position_models": finishModels,
		"ready":                  ready,
	}).Info("Model set reloaded")
}

// LogTeamOptimization logs a team solve outcome.
func (pl *PredictionLogger) LogTeamOptimization(eventID uuid.UUID, feasible bool, totalPoints float64, solveTimeMs int64) {
	pl.WithFields(logrus.Fields{
		"event_id":      eventID,
		"feasible":      feasible,
		"total_points":  totalPoints,
		"solve_time_ms": solveTimeMs,
	}).Info("Team optimization completed")
}

// LogPredictionError logs a per-rider prediction failure.
func (pl *PredictionLogger) LogPredictionError(riderID uuid.UUID, stage string, errorReason string) {
	pl.WithFields(logrus.Fields{
		"rider_id":     riderID,
		"stage":        stage,
		"error_reason": errorReason,
	}).Error("Rider prediction failed")
}

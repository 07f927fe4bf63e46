// Package service provides the prediction consumer boundary: cached event
// predictions and team optimization on top of the core pipeline.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/moto-picks/internal/logger"
	"github.com/yourusername/moto-picks/internal/metrics"
	"github.com/yourusername/moto-picks/internal/models"
	"github.com/yourusername/moto-picks/internal/repository"
)

// Batcher produces predictions for a full event field.
type Batcher interface {
	PredictBatch(ctx context.Context, featuresList []*models.RiderFeatures) ([]models.RiderPrediction, error)
	IsModelReady() bool
}

// TeamSolver selects the optimal roster from a prediction snapshot.
type TeamSolver interface {
	FindOptimalTeam(ctx context.Context, predictions []models.RiderPrediction, constraints models.TeamConstraints) *models.OptimalTeam
}

// PredictionService orchestrates feature retrieval, batch prediction, caching
// and snapshot persistence for events.
type PredictionService struct {
	features    repository.FeatureRepository
	predictions repository.PredictionRepository
	predictor   Batcher
	solver      TeamSolver
	cache       *cache.Cache
	log         *logrus.Logger
	pipelineLog *logger.PredictionLogger
}

// NewPredictionService creates a new prediction service. The prediction
// repository is optional; nil disables snapshot persistence.
func NewPredictionService(
	features repository.FeatureRepository,
	predictions repository.PredictionRepository,
	predictor Batcher,
	solver TeamSolver,
	cacheTTL time.Duration,
	log *logrus.Logger,
) *PredictionService {
	return &PredictionService{
		features:    features,
		predictions: predictions,
		predictor:   predictor,
		solver:      solver,
		cache:       cache.New(cacheTTL, cacheTTL*2),
		log:         log,
		pipelineLog: logger.NewPredictionLogger(log),
	}
}

// GeneratePredictions returns the prediction snapshot for an event, sorted by
// expected points descending. Results are cached per event; a cache hit
// returns the previously generated snapshot unchanged.
func (s *PredictionService) GeneratePredictions(ctx context.Context, eventID uuid.UUID) ([]models.RiderPrediction, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionRequest(time.Since(start).Seconds())
	}()

	if cached, found := s.cache.Get(eventID.String()); found {
		metrics.RecordCacheHit()
		if predictions, ok := cached.([]models.RiderPrediction); ok {
			return predictions, nil
		}
	}
	metrics.RecordCacheMiss()

	featuresList, err := s.features.GetEventFeatures(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event features: %w", err)
	}
	if len(featuresList) == 0 {
		return nil, fmt.Errorf("%w: no features for event %s", models.ErrNotFound, eventID)
	}

	predictions, err := s.predictor.PredictBatch(ctx, featuresList)
	if err != nil {
		return nil, fmt.Errorf("batch prediction failed: %w", err)
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		if predictions[i].ExpectedPoints != predictions[j].ExpectedPoints {
			return predictions[i].ExpectedPoints > predictions[j].ExpectedPoints
		}
		return predictions[i].RiderID.String() < predictions[j].RiderID.String()
	})

	s.cache.SetDefault(eventID.String(), predictions)

	if s.predictions != nil {
		if err := s.predictions.SaveBatch(ctx, predictions); err != nil {
			// Persistence is a projection; serving predictions wins.
			s.log.WithError(err).WithField("event_id", eventID).Warn("Failed to persist prediction snapshot")
		}
	}

	qualifiers := 0
	for i := range predictions {
		if predictions[i].IsQualifier() {
			qualifiers++
		}
	}
	s.pipelineLog.LogBatchPrediction(eventID, len(predictions), qualifiers,
		s.predictor.IsModelReady(), float64(time.Since(start).Milliseconds()))

	return predictions, nil
}

// InvalidateEvent drops the cached snapshot for an event. Called when
// handicaps change, qualifying results land, or the race completes.
func (s *PredictionService) InvalidateEvent(ctx context.Context, eventID uuid.UUID) {
	s.cache.Delete(eventID.String())
	metrics.RecordCacheInvalidation()

	if s.predictions != nil {
		if err := s.predictions.DeleteByEvent(ctx, eventID); err != nil {
			s.log.WithError(err).WithField("event_id", eventID).Warn("Failed to delete prediction snapshot")
		}
	}

	s.log.WithField("event_id", eventID).Info("Event predictions invalidated")
}

// FindOptimalTeam generates (or reuses) the event prediction snapshot and
// solves for the optimal roster under the given constraints.
func (s *PredictionService) FindOptimalTeam(ctx context.Context, eventID uuid.UUID, constraints models.TeamConstraints) (*models.OptimalTeam, error) {
	predictions, err := s.GeneratePredictions(ctx, eventID)
	if err != nil {
		return nil, err
	}

	team := s.solver.FindOptimalTeam(ctx, predictions, constraints)
	s.pipelineLog.LogTeamOptimization(eventID, team.IsFeasible, team.TotalExpectedPoints, team.SolveTimeMs)

	return team, nil
}

// CacheSize returns the number of cached event snapshots.
func (s *PredictionService) CacheSize() int {
	return s.cache.ItemCount()
}

package predictor

import (
	"math"
	"time"

	"github.com/yourusername/moto-picks/internal/models"
	"github.com/yourusername/moto-picks/internal/scoring"
)

// fallback is the heuristic path used when no model set is loaded for the
// rider's class or a model evaluation failed. Injured riders are a certain
// zero. Everyone else gets a handicap-proportional finish estimate, an
// assumed qualification rate, a widened interval, and low confidence.
func (p *Predictor) fallback(features *models.RiderFeatures) models.RiderPrediction {
	if features.IsInjured {
		return models.RiderPrediction{
			RiderID:     features.RiderID,
			EventID:     features.EventID,
			BikeClass:   features.BikeClass,
			IsAllStar:   features.IsAllStar,
			Handicap:    features.Handicap,
			Confidence:  1.0,
			PredictedAt: time.Now(),
		}
	}

	finish := clampInt(12-features.Handicap, 1, scoring.MaxScoredPosition)
	pointsIfQualifies := scoring.Points(finish, features.Handicap, features.IsAllStar)
	expected := float64(pointsIfQualifies) * p.cfg.FallbackQualificationRate
	margin := expected * p.cfg.FallbackMargin

	return models.RiderPrediction{
		RiderID:           features.RiderID,
		EventID:           features.EventID,
		BikeClass:         features.BikeClass,
		IsAllStar:         features.IsAllStar,
		Handicap:          features.Handicap,
		ExpectedPoints:    expected,
		PointsIfQualifies: pointsIfQualifies,
		PredictedFinish:   &finish,
		LowerBound:        math.Max(0, expected-margin),
		UpperBound:        expected + margin,
		Confidence:        0.3,
		PredictedAt:       time.Now(),
	}
}

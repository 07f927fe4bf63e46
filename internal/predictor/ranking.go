package predictor

import (
	"context"
	"math"
	"sort"

	"github.com/yourusername/moto-picks/internal/models"
	"github.com/yourusername/moto-picks/internal/scoring"
)

// PredictBatch predicts every rider in the batch, then force-ranks qualifiers
// within each bike class so no two riders share a predicted finish. The raw
// pass is immutable; ranking produces a new slice. Output order matches input
// order; callers sort for display.
func (p *Predictor) PredictBatch(ctx context.Context, featuresList []*models.RiderFeatures) ([]models.RiderPrediction, error) {
	BatchSize.Observe(float64(len(featuresList)))

	raw := make([]models.RiderPrediction, 0, len(featuresList))
	for _, features := range featuresList {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		raw = append(raw, p.Predict(features))
	}

	return p.forceRank(raw), nil
}

// forceRank converts possibly-duplicate raw predicted finishes into a unique
// 1..N ordering per class and recomputes points from the forced rank. Showing
// a rank whose points came from a different raw finish would be internally
// inconsistent, so the recomputation is mandatory.
func (p *Predictor) forceRank(raw []models.RiderPrediction) []models.RiderPrediction {
	ranked := make([]models.RiderPrediction, len(raw))
	copy(ranked, raw)

	for _, class := range models.AllClasses {
		var qualifiers []int
		for i := range ranked {
			if ranked[i].BikeClass == class && ranked[i].IsQualifier() {
				qualifiers = append(qualifiers, i)
			}
		}

		// Ascending raw finish; on a tie the higher expected value takes the
		// better rank.
		sort.SliceStable(qualifiers, func(a, b int) bool {
			pa, pb := ranked[qualifiers[a]], ranked[qualifiers[b]]
			if *pa.PredictedFinish != *pb.PredictedFinish {
				return *pa.PredictedFinish < *pb.PredictedFinish
			}
			return pa.ExpectedPoints > pb.ExpectedPoints
		})

		for pos, idx := range qualifiers {
			rank := pos + 1
			if rank > scoring.MaxScoredPosition {
				rank = scoring.MaxScoredPosition
			}
			ranked[idx] = p.rerank(ranked[idx], rank)
		}
	}

	return ranked
}

// rerank rebuilds a qualifier's scoring outputs from its forced rank, using
// the reported confidence as the qualification probability proxy.
func (p *Predictor) rerank(pred models.RiderPrediction, rank int) models.RiderPrediction {
	pointsIfQualifies := scoring.Points(rank, pred.Handicap, pred.IsAllStar)
	expected := pred.Confidence * float64(pointsIfQualifies)
	margin := expected * p.cfg.IntervalMargin

	pred.PredictedFinish = &rank
	pred.PointsIfQualifies = pointsIfQualifies
	pred.ExpectedPoints = expected
	pred.LowerBound = math.Max(0, expected-margin)
	pred.UpperBound = expected + margin
	return pred
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// RiderPrediction is the immutable output of the multi-stage predictor for a
// single rider in an event. PredictedFinish is nil when the rider is predicted
// to not qualify for the main event; in that case ExpectedPoints and
// PointsIfQualifies are always zero.
type RiderPrediction struct {
	RiderID   uuid.UUID `db:"rider_id" json:"rider_id" validate:"required"`
	EventID   uuid.UUID `db:"event_id" json:"event_id"`
	BikeClass BikeClass `db:"bike_class" json:"bike_class" validate:"required"`
	IsAllStar bool      `db:"is_all_star" json:"is_all_star"`
	Handicap  int       `db:"handicap" json:"handicap"`

	// ExpectedPoints is risk-adjusted: qualification probability times
	// PointsIfQualifies. PointsIfQualifies is the upside assuming the rider
	// makes the main event.
	ExpectedPoints    float64 `db:"expected_points" json:"expected_points"`
	PointsIfQualifies int     `db:"points_if_qualifies" json:"points_if_qualifies"`

	// PredictedFinish is 1-22, or nil meaning predicted DNQ.
	PredictedFinish *int `db:"predicted_finish" json:"predicted_finish,omitempty"`

	LowerBound float64 `db:"lower_bound" json:"lower_bound"`
	UpperBound float64 `db:"upper_bound" json:"upper_bound"`
	Confidence float64 `db:"confidence" json:"confidence" validate:"gte=0,lte=1"`

	PredictedAt time.Time `db:"predicted_at" json:"predicted_at"`
}

// IsQualifier reports whether the rider is predicted to make the main event.
func (p *RiderPrediction) IsQualifier() bool {
	return p.PredictedFinish != nil
}

// MeetsThreshold checks if the confidence meets the given threshold.
func (p *RiderPrediction) MeetsThreshold(threshold float64) bool {
	return p.Confidence >= threshold
}

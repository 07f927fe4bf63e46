package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BikeClass identifies the racing class a rider is entered in.
type BikeClass string

const (
	Class250 BikeClass = "250"
	Class450 BikeClass = "450"
)

// AllClasses lists every supported bike class.
var AllClasses = []BikeClass{Class450, Class250}

// Valid reports whether the bike class is a known value.
func (c BikeClass) Valid() bool {
	return c == Class250 || c == Class450
}

// ParseBikeClass converts a string to a BikeClass.
func ParseBikeClass(s string) (BikeClass, error) {
	switch BikeClass(s) {
	case Class250:
		return Class250, nil
	case Class450:
		return Class450, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBikeClass, s)
	}
}

// RiderFeatures is the immutable per-(rider, event) input to the prediction
// pipeline. Historical aggregates are pointer fields: nil means no history is
// available, which is distinct from an observed zero. Aggregates cover the
// rider's last 5 races in the same series type within the last 2 years; the
// feature source guarantees cross-discipline history never leaks in.
type RiderFeatures struct {
	RiderID   uuid.UUID `db:"rider_id" json:"rider_id" validate:"required"`
	EventID   uuid.UUID `db:"event_id" json:"event_id" validate:"required"`
	BikeClass BikeClass `db:"bike_class" json:"bike_class" validate:"required"`

	// Current event inputs.
	Handicap           int      `db:"handicap" json:"handicap"`
	IsAllStar          bool     `db:"is_all_star" json:"is_all_star"`
	IsInjured          bool     `db:"is_injured" json:"is_injured"`
	QualifyingPosition *int     `db:"qualifying_position" json:"qualifying_position,omitempty"`
	QualifyingLapTime  *float64 `db:"qualifying_lap_time" json:"qualifying_lap_time,omitempty"`
	QualifyingGap      *float64 `db:"qualifying_gap" json:"qualifying_gap,omitempty"`
	PickTrend          *float64 `db:"pick_trend" json:"pick_trend,omitempty"`

	// Historical aggregates, same-series only. Nil means no data.
	AvgFinishLast5        *float64 `db:"avg_finish_last_5" json:"avg_finish_last_5,omitempty"`
	AvgFantasyPointsLast5 *float64 `db:"avg_fantasy_points_last_5" json:"avg_fantasy_points_last_5,omitempty"`
	FinishRate            *float64 `db:"finish_rate" json:"finish_rate,omitempty"`
	TrackHistory          *float64 `db:"track_history" json:"track_history,omitempty"`
	RecentMomentum        *float64 `db:"recent_momentum" json:"recent_momentum,omitempty"`

	SeasonPoints int  `db:"season_points" json:"season_points"`
	IsIndoor     bool `db:"is_indoor" json:"is_indoor"`

	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasHistory reports whether the rider carries any historical average. Models
// are trained only on riders with history, so predictions without it are
// meaningless and short-circuit to a zero-confidence result.
func (f *RiderFeatures) HasHistory() bool {
	return f.AvgFinishLast5 != nil
}

// HasTrackHistory reports whether track-specific history exists.
func (f *RiderFeatures) HasTrackHistory() bool {
	return f.TrackHistory != nil
}

package models

import (
	"github.com/google/uuid"
)

// RidersPerClass is the roster size per bike class.
const RidersPerClass = 4

// TeamConstraints carries the roster rules for one optimization run.
// ExcludedRiders holds riders picked in the previous round of the same
// series, which league rules forbid re-picking.
type TeamConstraints struct {
	ExcludedRiders    map[uuid.UUID]bool `json:"excluded_riders"`
	RequireAllStar450 bool               `json:"require_all_star_450"`
	RequireAllStar250 bool               `json:"require_all_star_250"`
}

// DefaultTeamConstraints returns the standard league rules: exactly one
// All-Star required in each class, nothing excluded.
func DefaultTeamConstraints() TeamConstraints {
	return TeamConstraints{
		ExcludedRiders:    make(map[uuid.UUID]bool),
		RequireAllStar450: true,
		RequireAllStar250: true,
	}
}

// IsExcluded reports whether a rider is barred from selection.
func (c *TeamConstraints) IsExcluded(riderID uuid.UUID) bool {
	return c.ExcludedRiders[riderID]
}

// RequireAllStar reports whether the class requires exactly one All-Star.
func (c *TeamConstraints) RequireAllStar(class BikeClass) bool {
	if class == Class450 {
		return c.RequireAllStar450
	}
	return c.RequireAllStar250
}

// OptimalTeam is the optimizer's output: four riders per class maximizing
// total expected points under the constraints. It is a derived view,
// recomputable idempotently from the same prediction snapshot, and is never
// the source of truth.
type OptimalTeam struct {
	Riders450           []uuid.UUID `json:"riders_450"`
	Riders250           []uuid.UUID `json:"riders_250"`
	TotalExpectedPoints float64     `json:"total_expected_points"`
	IsFeasible          bool        `json:"is_feasible"`
	SolveTimeMs         int64       `json:"solve_time_ms"`
}

// Infeasible returns the canonical result for constraint sets that admit no
// valid roster. This is a normal outcome, not an error.
func Infeasible(solveTimeMs int64) *OptimalTeam {
	return &OptimalTeam{
		Riders450:   []uuid.UUID{},
		Riders250:   []uuid.UUID{},
		IsFeasible:  false,
		SolveTimeMs: solveTimeMs,
	}
}

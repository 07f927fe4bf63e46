// Package scoring implements the fantasy points rule for main event finishes.
package scoring

// MaxScoredPosition is the last finishing position that earns base points.
const MaxScoredPosition = 22

// basePoints maps an adjusted finishing position (1-22) to base fantasy
// points. Positions outside the table score zero.
var basePoints = [MaxScoredPosition + 1]int{
	0,  // unused, positions are 1-based
	25, 22, 20, 18, 17, 16, 15, 14, 13, 12,
	11, 10, 9, 8, 7, 6, 5, 4, 3, 2,
	1, 0,
}

// Points computes fantasy points for a finishing position. The handicap is
// subtracted from the finish before lookup, floored at position 1. Non
// All-Star riders whose adjusted position lands inside the top 10 have their
// points doubled; All-Stars never double.
func Points(finish, handicap int, isAllStar bool) int {
	adjusted := AdjustedPosition(finish, handicap)

	if adjusted > MaxScoredPosition {
		return 0
	}
	points := basePoints[adjusted]

	if !isAllStar && adjusted <= 10 {
		points *= 2
	}
	return points
}

// AdjustedPosition applies the handicap to a finishing position, floored at 1.
func AdjustedPosition(finish, handicap int) int {
	adjusted := finish - handicap
	if adjusted < 1 {
		return 1
	}
	return adjusted
}

// BasePoints returns the undoubled points for an adjusted position.
func BasePoints(adjusted int) int {
	if adjusted < 1 || adjusted > MaxScoredPosition {
		return 0
	}
	return basePoints[adjusted]
}

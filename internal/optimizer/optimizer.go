// Package optimizer selects the points-maximizing fantasy roster from a
// prediction snapshot.
package optimizer

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/moto-picks/internal/models"
)

// Optimizer solves the roster selection exactly: one binary variable per
// eligible rider, maximize total expected points, four riders per class,
// optionally exactly one All-Star per class. A greedy top-N pick can violate
// the All-Star constraint with no guarantee a local fix is optimal, so the
// solve enumerates with branch-and-bound pruning instead.
type Optimizer struct {
	logger *logrus.Logger
}

// New creates an optimizer.
func New(logger *logrus.Logger) *Optimizer {
	return &Optimizer{logger: logger}
}

// candidate is one eligible rider in the solve.
type candidate struct {
	riderID   uuid.UUID
	points    float64
	isAllStar bool
}

// FindOptimalTeam returns the optimal 8-rider roster, or an infeasible
// result when no assignment satisfies the constraints or the context expires
// mid-solve. Deterministic for identical inputs (modulo SolveTimeMs).
func (o *Optimizer) FindOptimalTeam(ctx context.Context, predictions []models.RiderPrediction, constraints models.TeamConstraints) *models.OptimalTeam {
	start := time.Now()

	riders450 := eligibleCandidates(predictions, constraints, models.Class450)
	riders250 := eligibleCandidates(predictions, constraints, models.Class250)

	sel450, pts450, ok450 := solveClass(ctx, riders450, constraints.RequireAllStar450)
	sel250, pts250, ok250 := solveClass(ctx, riders250, constraints.RequireAllStar250)

	elapsed := time.Since(start)
	SolveDuration.Observe(elapsed.Seconds())

	if !ok450 || !ok250 {
		SolvesTotal.WithLabelValues("infeasible").Inc()
		if o.logger != nil {
			o.logger.WithFields(logrus.Fields{
				"eligible_450": len(riders450),
				"eligible_250": len(riders250),
				"feasible_450": ok450,
				"feasible_250": ok250,
			}).Info("Team optimization infeasible")
		}
		return models.Infeasible(elapsed.Milliseconds())
	}

	SolvesTotal.WithLabelValues("feasible").Inc()
	return &models.OptimalTeam{
		Riders450:           sel450,
		Riders250:           sel250,
		TotalExpectedPoints: pts450 + pts250,
		IsFeasible:          true,
		SolveTimeMs:         elapsed.Milliseconds(),
	}
}

// eligibleCandidates filters the prediction snapshot down to the class's
// decision variables. Excluded riders are removed from the variable set,
// which is equivalent to fixing them to zero. Ordering is made deterministic
// before the search.
func eligibleCandidates(predictions []models.RiderPrediction, constraints models.TeamConstraints, class models.BikeClass) []candidate {
	var out []candidate
	for i := range predictions {
		p := &predictions[i]
		if p.BikeClass != class || constraints.IsExcluded(p.RiderID) {
			continue
		}
		out = append(out, candidate{
			riderID:   p.RiderID,
			points:    p.ExpectedPoints,
			isAllStar: p.IsAllStar,
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].points != out[b].points {
			return out[a].points > out[b].points
		}
		return out[a].riderID.String() < out[b].riderID.String()
	})
	return out
}

// solveClass finds the best 4-rider pick for one class by depth-first
// enumeration with an upper-bound prune. Candidates arrive sorted by points
// descending, so the bound for the remaining slots is the prefix sum of the
// next best candidates.
func solveClass(ctx context.Context, candidates []candidate, requireAllStar bool) ([]uuid.UUID, float64, bool) {
	n := len(candidates)
	if n < models.RidersPerClass {
		return nil, 0, false
	}

	// Prefix sums over sorted points for the bound.
	prefix := make([]float64, n+1)
	for i, c := range candidates {
		prefix[i+1] = prefix[i] + c.points
	}

	var (
		best      float64 = -1
		bestPick  []int
		pick      = make([]int, 0, models.RidersPerClass)
		cancelled bool
	)

	var search func(idx, allStars int, total float64)
	search = func(idx, allStars int, total float64) {
		if cancelled {
			return
		}
		select {
		case <-ctx.Done():
			cancelled = true
			return
		default:
		}

		if len(pick) == models.RidersPerClass {
			if requireAllStar && allStars != 1 {
				return
			}
			if total > best {
				best = total
				bestPick = append(bestPick[:0], pick...)
			}
			return
		}

		remaining := models.RidersPerClass - len(pick)
		if n-idx < remaining {
			return
		}

		// Bound: even taking the next best candidates cannot beat the
		// incumbent.
		bound := total + prefix[min(idx+remaining, n)] - prefix[idx]
		if bound <= best {
			return
		}

		for i := idx; i < n; i++ {
			c := candidates[i]
			if requireAllStar && c.isAllStar && allStars == 1 {
				continue // exactly one All-Star allowed
			}
			pick = append(pick, i)
			nextAllStars := allStars
			if c.isAllStar {
				nextAllStars++
			}
			search(i+1, nextAllStars, total+c.points)
			pick = pick[:len(pick)-1]
			if cancelled {
				return
			}
		}
	}

	search(0, 0, 0)

	if cancelled || bestPick == nil {
		return nil, 0, false
	}

	ids := make([]uuid.UUID, len(bestPick))
	for i, idx := range bestPick {
		ids[i] = candidates[idx].riderID
	}
	return ids, best, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

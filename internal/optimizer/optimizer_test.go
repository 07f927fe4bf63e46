package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/moto-picks/internal/models"
)

func rider(class models.BikeClass, points float64, allStar bool) models.RiderPrediction {
	return models.RiderPrediction{
		RiderID:        uuid.New(),
		BikeClass:      class,
		IsAllStar:      allStar,
		ExpectedPoints: points,
	}
}

// pool returns 6 riders per class with known points; one All-Star per class
// sits mid-pack so greedy top-4 would take it along with three others.
func pool() []models.RiderPrediction {
	return []models.RiderPrediction{
		rider(models.Class450, 50, false),
		rider(models.Class450, 45, false),
		rider(models.Class450, 40, true),
		rider(models.Class450, 38, false),
		rider(models.Class450, 35, true),
		rider(models.Class450, 30, false),

		rider(models.Class250, 44, false),
		rider(models.Class250, 42, true),
		rider(models.Class250, 41, false),
		rider(models.Class250, 39, false),
		rider(models.Class250, 20, true),
		rider(models.Class250, 10, false),
	}
}

func TestFindOptimalTeamMatchesBruteForce(t *testing.T) {
	predictions := pool()
	constraints := models.DefaultTeamConstraints()

	team := New(nil).FindOptimalTeam(context.Background(), predictions, constraints)
	require.True(t, team.IsFeasible)
	require.Len(t, team.Riders450, 4)
	require.Len(t, team.Riders250, 4)

	want := bruteForce(t, predictions, constraints)
	assert.InDelta(t, want, team.TotalExpectedPoints, 1e-9)
}

// bruteForce enumerates every constraint-satisfying 4-of-N pick per class.
func bruteForce(t *testing.T, predictions []models.RiderPrediction, constraints models.TeamConstraints) float64 {
	t.Helper()
	total := 0.0
	for _, class := range models.AllClasses {
		var classPreds []models.RiderPrediction
		for _, p := range predictions {
			if p.BikeClass == class && !constraints.IsExcluded(p.RiderID) {
				classPreds = append(classPreds, p)
			}
		}

		best := -1.0
		n := len(classPreds)
		for a := 0; a < n; a++ {
			for b := a + 1; b < n; b++ {
				for c := b + 1; c < n; c++ {
					for d := c + 1; d < n; d++ {
						team := []models.RiderPrediction{classPreds[a], classPreds[b], classPreds[c], classPreds[d]}
						allStars := 0
						sum := 0.0
						for _, r := range team {
							if r.IsAllStar {
								allStars++
							}
							sum += r.ExpectedPoints
						}
						if constraints.RequireAllStar(class) && allStars != 1 {
							continue
						}
						if sum > best {
							best = sum
						}
					}
				}
			}
		}
		require.GreaterOrEqual(t, best, 0.0, "brute force found no valid team for class %s", class)
		total += best
	}
	return total
}

func TestFindOptimalTeamExactlyOneAllStar(t *testing.T) {
	predictions := pool()
	constraints := models.DefaultTeamConstraints()

	team := New(nil).FindOptimalTeam(context.Background(), predictions, constraints)
	require.True(t, team.IsFeasible)

	byID := make(map[uuid.UUID]models.RiderPrediction)
	for _, p := range predictions {
		byID[p.RiderID] = p
	}

	for class, ids := range map[models.BikeClass][]uuid.UUID{
		models.Class450: team.Riders450,
		models.Class250: team.Riders250,
	} {
		allStars := 0
		for _, id := range ids {
			require.Equal(t, class, byID[id].BikeClass)
			if byID[id].IsAllStar {
				allStars++
			}
		}
		assert.Equal(t, 1, allStars, "class %s must carry exactly one All-Star", class)
	}
}

func TestFindOptimalTeamShortClassInfeasible(t *testing.T) {
	predictions := []models.RiderPrediction{
		rider(models.Class450, 50, true),
		rider(models.Class450, 45, false),
		rider(models.Class450, 40, false),
		// Only 3 riders in the 450 class.
		rider(models.Class250, 44, true),
		rider(models.Class250, 42, false),
		rider(models.Class250, 41, false),
		rider(models.Class250, 39, false),
	}

	team := New(nil).FindOptimalTeam(context.Background(), predictions, models.DefaultTeamConstraints())
	assert.False(t, team.IsFeasible)
	assert.Empty(t, team.Riders450)
	assert.Empty(t, team.Riders250)
	assert.Zero(t, team.TotalExpectedPoints)
}

func TestFindOptimalTeamNoAllStarInfeasible(t *testing.T) {
	var predictions []models.RiderPrediction
	for i := 0; i < 6; i++ {
		predictions = append(predictions, rider(models.Class450, float64(40-i), false))
		predictions = append(predictions, rider(models.Class250, float64(40-i), i == 0))
	}

	team := New(nil).FindOptimalTeam(context.Background(), predictions, models.DefaultTeamConstraints())
	assert.False(t, team.IsFeasible)
}

func TestFindOptimalTeamAllStarNotRequired(t *testing.T) {
	var predictions []models.RiderPrediction
	for i := 0; i < 6; i++ {
		predictions = append(predictions, rider(models.Class450, float64(40-i), false))
		predictions = append(predictions, rider(models.Class250, float64(40-i), false))
	}

	constraints := models.DefaultTeamConstraints()
	constraints.RequireAllStar450 = false
	constraints.RequireAllStar250 = false

	team := New(nil).FindOptimalTeam(context.Background(), predictions, constraints)
	require.True(t, team.IsFeasible)
	// Top 4 per class: 40+39+38+37.
	assert.InDelta(t, 2*(40+39+38+37), team.TotalExpectedPoints, 1e-9)
}

func TestFindOptimalTeamExclusions(t *testing.T) {
	predictions := pool()
	constraints := models.DefaultTeamConstraints()

	// Exclude the strongest 450 rider; the optimum must not contain them and
	// must still match brute force over the reduced pool.
	excluded := predictions[0].RiderID
	constraints.ExcludedRiders[excluded] = true

	team := New(nil).FindOptimalTeam(context.Background(), predictions, constraints)
	require.True(t, team.IsFeasible)
	assert.NotContains(t, team.Riders450, excluded)

	want := bruteForce(t, predictions, constraints)
	assert.InDelta(t, want, team.TotalExpectedPoints, 1e-9)
}

func TestFindOptimalTeamExcludingOnlyAllStarInfeasible(t *testing.T) {
	predictions := pool()
	constraints := models.DefaultTeamConstraints()

	// Exclude both 450 All-Stars; the exactly-one constraint is unsatisfiable.
	for _, p := range predictions {
		if p.BikeClass == models.Class450 && p.IsAllStar {
			constraints.ExcludedRiders[p.RiderID] = true
		}
	}

	team := New(nil).FindOptimalTeam(context.Background(), predictions, constraints)
	assert.False(t, team.IsFeasible)
}

func TestFindOptimalTeamIdempotent(t *testing.T) {
	predictions := pool()
	constraints := models.DefaultTeamConstraints()
	opt := New(nil)

	first := opt.FindOptimalTeam(context.Background(), predictions, constraints)
	second := opt.FindOptimalTeam(context.Background(), predictions, constraints)

	assert.Equal(t, first.Riders450, second.Riders450)
	assert.Equal(t, first.Riders250, second.Riders250)
	assert.Equal(t, first.TotalExpectedPoints, second.TotalExpectedPoints)
	assert.Equal(t, first.IsFeasible, second.IsFeasible)
}

func TestFindOptimalTeamCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	team := New(nil).FindOptimalTeam(ctx, pool(), models.DefaultTeamConstraints())
	assert.False(t, team.IsFeasible)
}

func TestFindOptimalTeamLargeFieldFast(t *testing.T) {
	var predictions []models.RiderPrediction
	for i := 0; i < 40; i++ {
		predictions = append(predictions, rider(models.Class450, float64(i%25)+0.5, i%7 == 0))
		predictions = append(predictions, rider(models.Class250, float64(i%23)+0.5, i%9 == 0))
	}

	start := time.Now()
	team := New(nil).FindOptimalTeam(context.Background(), predictions, models.DefaultTeamConstraints())
	require.True(t, team.IsFeasible)
	assert.Less(t, time.Since(start), 2*time.Second)
}

package predictor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/moto-picks/internal/ml"
	"github.com/yourusername/moto-picks/internal/models"
)

// stubModel lets tests pin model outputs per stage.
type stubModel struct {
	fn       func([]float64) (float64, error)
	features int
}

func (s *stubModel) Predict(features []float64) (float64, error) { return s.fn(features) }
func (s *stubModel) NumFeatures() int                            { return s.features }

func constModel(v float64, features int) *stubModel {
	return &stubModel{fn: func([]float64) (float64, error) { return v, nil }, features: features}
}

func failingModel(features int) *stubModel {
	return &stubModel{fn: func([]float64) (float64, error) {
		return 0, errors.New("backend exploded")
	}, features: features}
}

func newTestPredictor(t *testing.T) *Predictor {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	store := ml.NewArtifactStore(t.TempDir(), logger)
	return New(store, DefaultConfig(), logger)
}

// install swaps in a stub model set for both classes.
func install(p *Predictor, qual, finish ml.Model) {
	set := &modelSet{
		qualification: map[models.BikeClass]ml.Model{models.Class450: qual, models.Class250: qual},
		finish:        map[models.BikeClass]ml.Model{models.Class450: finish, models.Class250: finish},
		loadedAt:      time.Now(),
	}
	p.current.Store(set)
}

func testFeatures(class models.BikeClass) *models.RiderFeatures {
	avgFinish := 8.0
	avgPoints := 18.0
	finishRate := 85.0
	return &models.RiderFeatures{
		RiderID:               uuid.New(),
		EventID:               uuid.New(),
		BikeClass:             class,
		Handicap:              2,
		AvgFinishLast5:        &avgFinish,
		AvgFantasyPointsLast5: &avgPoints,
		FinishRate:            &finishRate,
	}
}

func TestPredictNoHistoryGuard(t *testing.T) {
	p := newTestPredictor(t)
	install(p, constModel(0.9, 5), constModel(3, 7))

	features := testFeatures(models.Class450)
	features.AvgFinishLast5 = nil

	pred := p.Predict(features)
	assert.Zero(t, pred.ExpectedPoints)
	assert.Zero(t, pred.PointsIfQualifies)
	assert.Nil(t, pred.PredictedFinish)
	assert.Zero(t, pred.Confidence)
}

func TestPredictModelPath(t *testing.T) {
	p := newTestPredictor(t)
	install(p, constModel(0.8, 5), constModel(5.4, 7))

	features := testFeatures(models.Class450)
	pred := p.Predict(features)

	require.NotNil(t, pred.PredictedFinish)
	assert.Equal(t, 5, *pred.PredictedFinish) // 5.4 rounds to 5
	// adjusted 5-2=3 -> 20 base, doubled for non-all-star.
	assert.Equal(t, 40, pred.PointsIfQualifies)
	assert.InDelta(t, 0.8*40, pred.ExpectedPoints, 1e-9)

	// Confidence: 0.3 base + 0.3 history + 0.2 uninjured = 0.8, times 0.8.
	assert.InDelta(t, 0.64, pred.Confidence, 1e-9)

	// 25% interval.
	assert.InDelta(t, 32*0.75, pred.LowerBound, 1e-9)
	assert.InDelta(t, 32*1.25, pred.UpperBound, 1e-9)
}

func TestPredictCutoff(t *testing.T) {
	p := newTestPredictor(t)

	t.Run("below cutoff short-circuits to DNQ", func(t *testing.T) {
		install(p, constModel(0.19, 5), constModel(3, 7))
		pred := p.Predict(testFeatures(models.Class450))

		assert.Nil(t, pred.PredictedFinish)
		assert.Zero(t, pred.ExpectedPoints)
		assert.Zero(t, pred.PointsIfQualifies)
		assert.InDelta(t, 0.19, pred.Confidence, 1e-9)
	})

	t.Run("exactly at cutoff passes", func(t *testing.T) {
		install(p, constModel(0.20, 5), constModel(3, 7))
		pred := p.Predict(testFeatures(models.Class450))

		require.NotNil(t, pred.PredictedFinish)
		assert.Positive(t, pred.PointsIfQualifies)
	})
}

func TestPredictFinishClamping(t *testing.T) {
	p := newTestPredictor(t)

	install(p, constModel(0.9, 5), constModel(-4.2, 7))
	pred := p.Predict(testFeatures(models.Class450))
	require.NotNil(t, pred.PredictedFinish)
	assert.Equal(t, 1, *pred.PredictedFinish)

	install(p, constModel(0.9, 5), constModel(31.0, 7))
	pred = p.Predict(testFeatures(models.Class450))
	require.NotNil(t, pred.PredictedFinish)
	assert.Equal(t, 22, *pred.PredictedFinish)
}

func TestPredictTrackHistoryRaisesConfidence(t *testing.T) {
	p := newTestPredictor(t)
	install(p, constModel(1.0, 5), constModel(5, 7))

	features := testFeatures(models.Class450)
	without := p.Predict(features)

	trackAvg := 6.5
	features.TrackHistory = &trackAvg
	with := p.Predict(features)

	assert.InDelta(t, 0.8, without.Confidence, 1e-9)
	assert.InDelta(t, 1.0, with.Confidence, 1e-9)
}

func TestPredictModelFailureFallsBack(t *testing.T) {
	p := newTestPredictor(t)
	install(p, failingModel(5), constModel(3, 7))

	features := testFeatures(models.Class450)
	pred := p.Predict(features)

	// Fallback heuristic: finish = 12 - handicap = 10.
	require.NotNil(t, pred.PredictedFinish)
	assert.Equal(t, 10, *pred.PredictedFinish)
	assert.InDelta(t, 0.3, pred.Confidence, 1e-9)
}

func TestPredictPanicFallsBack(t *testing.T) {
	p := newTestPredictor(t)
	panicky := &stubModel{fn: func([]float64) (float64, error) { panic("boom") }, features: 5}
	install(p, panicky, constModel(3, 7))

	pred := p.Predict(testFeatures(models.Class450))
	require.NotNil(t, pred.PredictedFinish)
	assert.InDelta(t, 0.3, pred.Confidence, 1e-9)
}

func TestFallbackInjuredRider(t *testing.T) {
	p := newTestPredictor(t) // no models loaded

	features := testFeatures(models.Class450)
	features.IsInjured = true

	pred := p.Predict(features)
	assert.Zero(t, pred.ExpectedPoints)
	assert.Zero(t, pred.PointsIfQualifies)
	assert.Nil(t, pred.PredictedFinish)
	assert.Equal(t, 1.0, pred.Confidence)
}

func TestFallbackHeuristic(t *testing.T) {
	p := newTestPredictor(t) // no models loaded

	features := testFeatures(models.Class450)
	features.Handicap = 4

	pred := p.Predict(features)
	require.NotNil(t, pred.PredictedFinish)
	assert.Equal(t, 8, *pred.PredictedFinish) // 12 - 4

	// adjusted 8-4=4 -> 18 base doubled = 36; expected at 80% rate.
	assert.Equal(t, 36, pred.PointsIfQualifies)
	assert.InDelta(t, 28.8, pred.ExpectedPoints, 1e-9)

	// 50% widened margin.
	assert.InDelta(t, 14.4, pred.LowerBound, 1e-9)
	assert.InDelta(t, 43.2, pred.UpperBound, 1e-9)
	assert.InDelta(t, 0.3, pred.Confidence, 1e-9)
}

func TestIsModelReady(t *testing.T) {
	p := newTestPredictor(t)
	assert.False(t, p.IsModelReady())

	// Only a qualification model is not enough.
	p.current.Store(&modelSet{
		qualification: map[models.BikeClass]ml.Model{models.Class450: constModel(0.5, 5)},
		finish:        map[models.BikeClass]ml.Model{},
	})
	assert.False(t, p.IsModelReady())

	install(p, constModel(0.5, 5), constModel(3, 7))
	assert.True(t, p.IsModelReady())
}

func TestReloadSwapsModelSet(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	dir := t.TempDir()
	store := ml.NewArtifactStore(dir, logger)
	p := New(store, DefaultConfig(), logger)
	assert.False(t, p.IsModelReady())

	writeStubArtifacts(t, dir)
	p.Reload()
	assert.True(t, p.IsModelReady())
}

// writeStubArtifacts drops a minimal qualification and finish-position
// artifact for the 450 class into dir.
func writeStubArtifacts(t *testing.T, dir string) {
	t.Helper()
	qual := `{"objective":"binary:logistic","num_features":5,"trees":[{"nodes":[{"leaf":true,"value":1.0}]}]}`
	finish := `{"objective":"reg:squarederror","num_features":7,"trees":[{"nodes":[{"leaf":true,"value":6.0}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "450_qualification.json"), []byte(qual), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "450_finish_position.json"), []byte(finish), 0o644))
}

func TestQualificationVectorOrder(t *testing.T) {
	avgFinish := 7.0
	finishRate := 90.0
	track := 5.5
	f := &models.RiderFeatures{
		Handicap:       3,
		AvgFinishLast5: &avgFinish,
		FinishRate:     &finishRate,
		TrackHistory:   &track,
		IsAllStar:      true,
	}
	assert.Equal(t, []float64{3, 7, 90, 5.5, 1}, qualificationVector(f))
}

func TestFinishPositionVectorOrder(t *testing.T) {
	avgFinish := 7.0
	avgPoints := 21.0
	track := 5.5
	momentum := -1.5
	f := &models.RiderFeatures{
		Handicap:              2,
		AvgFinishLast5:        &avgFinish,
		AvgFantasyPointsLast5: &avgPoints,
		TrackHistory:          &track,
		RecentMomentum:        &momentum,
		IsIndoor:              true,
	}
	assert.Equal(t, []float64{2, 7, 21, 5.5, -1.5, 0, 1}, finishPositionVector(f))
}

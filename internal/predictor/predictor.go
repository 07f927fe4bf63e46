package predictor

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/moto-picks/internal/ml"
	"github.com/yourusername/moto-picks/internal/models"
	"github.com/yourusername/moto-picks/internal/scoring"
)

// modelSet is the immutable handle set for every loaded artifact. A reload
// builds a complete new set and swaps the pointer; in-flight predictions keep
// reading the set they started with and never observe a partial update.
type modelSet struct {
	qualification map[models.BikeClass]ml.Model
	finish        map[models.BikeClass]ml.Model
	loadedAt      time.Time
}

// ready reports whether at least one qualification and one finish-position
// artifact are loaded.
func (s *modelSet) ready() bool {
	return len(s.qualification) > 0 && len(s.finish) > 0
}

// Predictor turns rider features into predictions via the two-stage model
// pipeline, falling back to a handicap heuristic when models are unavailable.
// Safe for concurrent use; Reload may run while predictions are in flight.
type Predictor struct {
	store  *ml.ArtifactStore
	cfg    Config
	logger *logrus.Logger

	current  atomic.Pointer[modelSet]
	reloadMu sync.Mutex
}

// New creates a predictor and attempts an initial model load. A missing or
// empty artifact store is not an error; the predictor starts in fallback mode
// and a later Reload can bring models online.
func New(store *ml.ArtifactStore, cfg Config, logger *logrus.Logger) *Predictor {
	p := &Predictor{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
	p.current.Store(&modelSet{
		qualification: map[models.BikeClass]ml.Model{},
		finish:        map[models.BikeClass]ml.Model{},
	})
	p.Reload()
	return p
}

// Reload rebuilds the model set from the artifact store and swaps it in.
// Reloads are serialized; readers are never blocked.
func (p *Predictor) Reload() {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	next := &modelSet{
		qualification: make(map[models.BikeClass]ml.Model),
		finish:        make(map[models.BikeClass]ml.Model),
		loadedAt:      time.Now(),
	}

	for key, model := range p.store.LoadAll() {
		switch key.ModelType {
		case models.ModelTypeQualification:
			next.qualification[key.BikeClass] = model
		case models.ModelTypeFinishPosition:
			next.finish[key.BikeClass] = model
		}
	}

	for _, class := range models.AllClasses {
		ModelsLoaded.WithLabelValues(string(class), string(models.ModelTypeQualification)).Set(boolGauge(next.qualification[class] != nil))
		ModelsLoaded.WithLabelValues(string(class), string(models.ModelTypeFinishPosition)).Set(boolGauge(next.finish[class] != nil))
	}

	p.current.Store(next)

	if next.ready() {
		ModelReloadsTotal.WithLabelValues("success").Inc()
		p.logger.WithFields(logrus.Fields{
			"qualification_models":   len(next.qualification),
			"finish_position_models": len(next.finish),
		}).Info("Model set loaded")
	} else {
		ModelReloadsTotal.WithLabelValues("empty").Inc()
		p.logger.Warn("No complete model set available, predictions will use fallback heuristic")
	}
}

// IsModelReady returns true only if at least one qualification artifact and
// at least one finish-position artifact are loaded.
func (p *Predictor) IsModelReady() bool {
	return p.current.Load().ready()
}

// LoadedAt returns when the current model set was built.
func (p *Predictor) LoadedAt() time.Time {
	return p.current.Load().loadedAt
}

// Predict produces one rider's prediction. Per-rider model failures never
// propagate: the rider is served by the fallback heuristic instead.
func (p *Predictor) Predict(features *models.RiderFeatures) models.RiderPrediction {
	start := time.Now()
	defer func() {
		PredictionLatency.Observe(time.Since(start).Seconds())
	}()

	// Models are trained only on riders with history; without it any model
	// output would be fabricated.
	if !features.HasHistory() {
		PredictionsTotal.WithLabelValues(string(features.BikeClass), "no_history").Inc()
		return zeroPrediction(features)
	}

	set := p.current.Load()
	qualModel := set.qualification[features.BikeClass]
	finishModel := set.finish[features.BikeClass]
	if qualModel == nil || finishModel == nil {
		PredictionsTotal.WithLabelValues(string(features.BikeClass), "fallback").Inc()
		return p.fallback(features)
	}

	pred, err := p.predictWithModels(features, qualModel, finishModel)
	if err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"rider_id":   features.RiderID,
			"bike_class": features.BikeClass,
		}).Warn("Model prediction failed, using fallback heuristic")
		PredictionsTotal.WithLabelValues(string(features.BikeClass), "fallback").Inc()
		return p.fallback(features)
	}

	if pred.IsQualifier() {
		PredictionsTotal.WithLabelValues(string(features.BikeClass), "model").Inc()
	} else {
		PredictionsTotal.WithLabelValues(string(features.BikeClass), "dnq").Inc()
	}
	return pred
}

// predictWithModels runs the two model stages plus scoring. A panic inside a
// backend is converted to an error so a single rider cannot abort a batch.
func (p *Predictor) predictWithModels(features *models.RiderFeatures, qualModel, finishModel ml.Model) (pred models.RiderPrediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			PredictionFailuresTotal.WithLabelValues(string(features.BikeClass), "panic").Inc()
			err = fmt.Errorf("%w: %v", ErrPredictionFailed, r)
		}
	}()

	// Stage 1: qualification probability.
	qualProb, err := qualModel.Predict(qualificationVector(features))
	if err != nil {
		PredictionFailuresTotal.WithLabelValues(string(features.BikeClass), "qualification").Inc()
		return pred, fmt.Errorf("%w: qualification stage: %v", ErrPredictionFailed, err)
	}
	qualProb = clampFloat(qualProb, 0, 1)

	// Riders at exactly the cutoff pass; only strictly-below short-circuits.
	if qualProb < p.cfg.QualificationCutoff {
		return models.RiderPrediction{
			RiderID:     features.RiderID,
			EventID:     features.EventID,
			BikeClass:   features.BikeClass,
			IsAllStar:   features.IsAllStar,
			Handicap:    features.Handicap,
			Confidence:  qualProb,
			PredictedAt: time.Now(),
		}, nil
	}

	// Stage 2: continuous finish position, rounded and clamped to 1-22.
	rawFinish, err := finishModel.Predict(finishPositionVector(features))
	if err != nil {
		PredictionFailuresTotal.WithLabelValues(string(features.BikeClass), "finish_position").Inc()
		return pred, fmt.Errorf("%w: finish position stage: %v", ErrPredictionFailed, err)
	}
	finish := clampInt(int(math.Round(rawFinish)), 1, scoring.MaxScoredPosition)

	// Stage 3: deterministic scoring and risk adjustment.
	pointsIfQualifies := scoring.Points(finish, features.Handicap, features.IsAllStar)
	expected := qualProb * float64(pointsIfQualifies)

	confidence := p.confidence(features, qualProb)
	margin := expected * p.cfg.IntervalMargin

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
		Confidence:        confidence,
		PredictedAt:       time.Now(),
	}, nil
}

// confidence scores how much signal backed the prediction, then degrades it
// by the qualification probability so uncertainty in either stage shows up.
func (p *Predictor) confidence(features *models.RiderFeatures, qualProb float64) float64 {
	c := 0.3
	if features.HasHistory() {
		c += 0.3
	}
	if features.HasTrackHistory() {
		c += 0.2
	}
	if !features.IsInjured {
		c += 0.2
	}
	if c > 1.0 {
		c = 1.0
	}
	return c * qualProb
}

// qualificationVector maps features onto the qualification model's trained
// feature order. Changing this order breaks the artifact contract.
func qualificationVector(f *models.RiderFeatures) []float64 {
	return []float64{
		float64(f.Handicap),
		deref(f.AvgFinishLast5),
		deref(f.FinishRate),
		deref(f.TrackHistory),
		boolFeature(f.IsAllStar),
	}
}

// finishPositionVector maps features onto the finish-position model's trained
// feature order.
func finishPositionVector(f *models.RiderFeatures) []float64 {
	return []float64{
		float64(f.Handicap),
		deref(f.AvgFinishLast5),
		deref(f.AvgFantasyPointsLast5),
		deref(f.TrackHistory),
		deref(f.RecentMomentum),
		boolFeature(f.IsAllStar),
		boolFeature(f.IsIndoor),
	}
}

// zeroPrediction is the explicit no-history result: zero points, zero
// confidence, never a fabricated number.
func zeroPrediction(features *models.RiderFeatures) models.RiderPrediction {
	return models.RiderPrediction{
		RiderID:     features.RiderID,
		EventID:     features.EventID,
		BikeClass:   features.BikeClass,
		IsAllStar:   features.IsAllStar,
		Handicap:    features.Handicap,
		PredictedAt: time.Now(),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

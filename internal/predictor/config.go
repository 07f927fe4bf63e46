package predictor

// Config holds the tunable constants of the prediction pipeline. The cutoff
// and margins are empirical values carried over from model calibration runs;
// they are configuration, not invariants, and are candidates for
// recalibration as training data grows.
type Config struct {
	// QualificationCutoff is the minimum qualification probability below
	// which a rider is predicted DNQ. The boundary is inclusive on the pass
	// side: a probability of exactly the cutoff proceeds to stage 2.
	QualificationCutoff float64 `mapstructure:"qualification_cutoff" validate:"gte=0,lte=1"`

	// IntervalMargin is the fraction of expected points used for the
	// prediction interval on the model path.
	IntervalMargin float64 `mapstructure:"interval_margin" validate:"gte=0"`

	// FallbackMargin is the widened interval fraction on the heuristic path.
	FallbackMargin float64 `mapstructure:"fallback_margin" validate:"gte=0"`

	// FallbackQualificationRate is the assumed qualification rate when no
	// model is available.
	FallbackQualificationRate float64 `mapstructure:"fallback_qualification_rate" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		QualificationCutoff:       0.20,
		IntervalMargin:            0.25,
		FallbackMargin:            0.50,
		FallbackQualificationRate: 0.80,
	}
}

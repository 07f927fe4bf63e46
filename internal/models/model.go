package models

import (
	"time"

	"github.com/google/uuid"
)

// ModelType identifies which stage of the pipeline a trained artifact serves.
type ModelType string

const (
	ModelTypeQualification  ModelType = "qualification"
	ModelTypeFinishPosition ModelType = "finish_position"
)

// Valid reports whether the model type is a known value.
func (t ModelType) Valid() bool {
	return t == ModelTypeQualification || t == ModelTypeFinishPosition
}

// TrainedModelResult describes one trained model artifact. Records are
// immutable: a new training run produces a new record and the previous active
// record of the same (bike class, model type) is deactivated. The core only
// reads these records to determine model availability; training is external.
type TrainedModelResult struct {
	ID          uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	BikeClass   BikeClass `db:"bike_class" json:"bike_class" validate:"required"`
	ModelType   ModelType `db:"model_type" json:"model_type" validate:"required"`
	SampleCount int       `db:"sample_count" json:"sample_count" validate:"gte=0"`

	// Accuracy and AUC apply to qualification classifiers; RSquared and MAE
	// to finish-position regressors. The unused pair is nil.
	Accuracy *float64 `db:"accuracy" json:"accuracy,omitempty"`
	AUC      *float64 `db:"auc" json:"auc,omitempty"`
	RSquared *float64 `db:"r_squared" json:"r_squared,omitempty"`
	MAE      *float64 `db:"mae" json:"mae,omitempty"`

	ArtifactPath string    `db:"artifact_path" json:"artifact_path" validate:"required"`
	TrainedAt    time.Time `db:"trained_at" json:"trained_at" validate:"required"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ModelMetadata is the availability view of a trained model artifact exposed
// by status tooling.
type ModelMetadata struct {
	BikeClass   BikeClass `json:"bike_class"`
	ModelType   ModelType `json:"model_type"`
	SampleCount int       `json:"sample_count"`
	TrainedAt   time.Time `json:"trained_at"`
	Loaded      bool      `json:"loaded"`
}

// IsActive checks if the record is the currently active artifact.
func (m *TrainedModelResult) IsActive() bool {
	return m.Active
}

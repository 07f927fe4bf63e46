package ml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/moto-picks/internal/models"
)

// ArtifactKey addresses one trained model artifact in the store.
type ArtifactKey struct {
	BikeClass models.BikeClass
	ModelType models.ModelType
}

// String returns the stable storage name for the key.
func (k ArtifactKey) String() string {
	return fmt.Sprintf("%s_%s", k.BikeClass, k.ModelType)
}

// ArtifactStore locates trained model artifacts on a filesystem content
// store. Artifacts may appear, disappear, or be replaced at runtime; absence
// is reported as ErrModelUnavailable, never a crash.
type ArtifactStore struct {
	dir    string
	logger *logrus.Logger
}

// NewArtifactStore creates a store rooted at dir.
func NewArtifactStore(dir string, logger *logrus.Logger) *ArtifactStore {
	return &ArtifactStore{dir: dir, logger: logger}
}

// Path returns the on-disk location for an artifact key.
func (s *ArtifactStore) Path(key ArtifactKey) string {
	return filepath.Join(s.dir, key.String()+".json")
}

// Exists reports whether an artifact is present for the key.
func (s *ArtifactStore) Exists(key ArtifactKey) bool {
	info, err := os.Stat(s.Path(key))
	return err == nil && !info.IsDir()
}

// Load reads and parses the artifact for a key.
func (s *ArtifactStore) Load(key ArtifactKey) (*GradientBoostedModel, error) {
	model, err := LoadGradientBoostedModel(s.Path(key))
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"bike_class": key.BikeClass,
			"model_type": key.ModelType,
			"trees":      len(model.Trees),
			"features":   model.FeatureCount,
		}).Debug("Loaded model artifact")
	}
	return model, nil
}

// LoadAll loads every available artifact, keyed by (class, type). Missing
// artifacts are skipped; malformed ones are logged and skipped so a single
// bad file cannot take the whole model set down.
func (s *ArtifactStore) LoadAll() map[ArtifactKey]*GradientBoostedModel {
	loaded := make(map[ArtifactKey]*GradientBoostedModel)

	for _, class := range models.AllClasses {
		for _, modelType := range []models.ModelType{models.ModelTypeQualification, models.ModelTypeFinishPosition} {
			key := ArtifactKey{BikeClass: class, ModelType: modelType}
			model, err := s.Load(key)
			if err != nil {
				if s.logger != nil && !errors.Is(err, ErrModelUnavailable) {
					s.logger.WithError(err).WithFields(logrus.Fields{
						"bike_class": class,
						"model_type": modelType,
					}).Warn("Skipping model artifact")
				}
				continue
			}
			loaded[key] = model
		}
	}

	return loaded
}

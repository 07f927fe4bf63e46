package repository

import (
	"fmt"

	"github.com/yourusername/moto-picks/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Model      ModelRepository
	Feature    FeatureRepository
	Prediction PredictionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Model:      NewPostgresModelRepository(db),
		Feature:    NewPostgresFeatureRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
	}, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/moto-picks/internal/models"
)

// ModelRepository defines the interface for trained model record access
type ModelRepository interface {
	Create(ctx context.Context, model *models.TrainedModelResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrainedModelResult, error)
	GetActive(ctx context.Context, class models.BikeClass, modelType models.ModelType) (*models.TrainedModelResult, error)
	GetAllActive(ctx context.Context) ([]*models.TrainedModelResult, error)
	GetHistory(ctx context.Context, class models.BikeClass, modelType models.ModelType, limit int) ([]*models.TrainedModelResult, error)
}

// FeatureRepository defines the interface for precomputed rider feature access
type FeatureRepository interface {
	GetEventFeatures(ctx context.Context, eventID uuid.UUID) ([]*models.RiderFeatures, error)
	GetRiderFeatures(ctx context.Context, eventID, riderID uuid.UUID) (*models.RiderFeatures, error)
	Upsert(ctx context.Context, features *models.RiderFeatures) error
}

// PredictionRepository defines the interface for prediction snapshot access
type PredictionRepository interface {
	SaveBatch(ctx context.Context, predictions []models.RiderPrediction) error
	GetByEvent(ctx context.Context, eventID uuid.UUID) ([]models.RiderPrediction, error)
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) error
}

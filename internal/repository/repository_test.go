package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/moto-picks/internal/database"
	"github.com/yourusername/moto-picks/internal/models"
)

func TestNewRepositoriesRequiresDB(t *testing.T) {
	repos, err := NewRepositories(nil)
	if err == nil {
		t.Fatal("expected error for nil database")
	}
	if repos != nil {
		t.Error("expected nil repositories on error")
	}
}

// Integration tests below skip unless a test database is reachable.

func TestModelRepositoryCreateAndGetActive(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	accuracy := 0.82
	auc := 0.88
	record := &models.TrainedModelResult{
		ID:           uuid.New(),
		BikeClass:    models.Class450,
		ModelType:    models.ModelTypeQualification,
		SampleCount:  1200,
		Accuracy:     &accuracy,
		AUC:          &auc,
		ArtifactPath: "/tmp/artifacts/450_qualification.json",
		TrainedAt:    time.Now(),
		Active:       true,
	}

	if err := repos.Model.Create(ctx, record); err != nil {
		t.Fatalf("failed to create model record: %v", err)
	}

	active, err := repos.Model.GetActive(ctx, models.Class450, models.ModelTypeQualification)
	if err != nil {
		t.Fatalf("failed to get active model: %v", err)
	}
	if active.ID != record.ID {
		t.Errorf("expected active model %v, got %v", record.ID, active.ID)
	}

	// A newer record should displace the previous active one.
	replacement := &models.TrainedModelResult{
		ID:           uuid.New(),
		BikeClass:    models.Class450,
		ModelType:    models.ModelTypeQualification,
		SampleCount:  1400,
		Accuracy:     &accuracy,
		ArtifactPath: "/tmp/artifacts/450_qualification.json",
		TrainedAt:    time.Now(),
		Active:       true,
	}
	if err := repos.Model.Create(ctx, replacement); err != nil {
		t.Fatalf("failed to create replacement record: %v", err)
	}

	active, err = repos.Model.GetActive(ctx, models.Class450, models.ModelTypeQualification)
	if err != nil {
		t.Fatalf("failed to get active model after replacement: %v", err)
	}
	if active.ID != replacement.ID {
		t.Errorf("expected replacement %v to be active, got %v", replacement.ID, active.ID)
	}
}

func TestPredictionRepositorySnapshotRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	eventID := uuid.New()
	finish := 4
	predictions := []models.RiderPrediction{
		{
			RiderID:           uuid.New(),
			EventID:           eventID,
			BikeClass:         models.Class250,
			Handicap:          3,
			ExpectedPoints:    14.4,
			PointsIfQualifies: 18,
			PredictedFinish:   &finish,
			LowerBound:        3.75,
			UpperBound:        4.25,
			Confidence:        0.8,
			PredictedAt:       time.Now(),
		},
		{
			RiderID:     uuid.New(),
			EventID:     eventID,
			BikeClass:   models.Class250,
			Confidence:  0.1,
			PredictedAt: time.Now(),
		},
	}

	if err := repos.Prediction.SaveBatch(ctx, predictions); err != nil {
		t.Fatalf("failed to save prediction batch: %v", err)
	}

	stored, err := repos.Prediction.GetByEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("failed to read prediction snapshot: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored predictions, got %d", len(stored))
	}
	if stored[0].ExpectedPoints < stored[1].ExpectedPoints {
		t.Error("expected snapshot ordered by expected points descending")
	}

	if err := repos.Prediction.DeleteByEvent(ctx, eventID); err != nil {
		t.Fatalf("failed to delete prediction snapshot: %v", err)
	}

	stored, err = repos.Prediction.GetByEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("failed to re-read prediction snapshot: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("expected empty snapshot after delete, got %d rows", len(stored))
	}
}

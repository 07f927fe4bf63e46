// Package helpers provides shared fixtures for integration and e2e tests.
package helpers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/moto-picks/internal/models"
)

// FieldSpec controls a generated event field.
type FieldSpec struct {
	EventID      uuid.UUID
	Class        models.BikeClass
	Riders       int
	AllStars     int // first N riders are All-Stars
	NoHistory    int // last N riders carry no historical aggregates
	BaseHandicap int
}

// BuildField generates a deterministic rider field for one class of an event.
func BuildField(spec FieldSpec) []*models.RiderFeatures {
	field := make([]*models.RiderFeatures, 0, spec.Riders)
	for i := 0; i < spec.Riders; i++ {
		features := &models.RiderFeatures{
			RiderID:   uuid.NewSHA1(spec.EventID, []byte{byte(spec.Class[0]), byte(i)}),
			EventID:   spec.EventID,
			BikeClass: spec.Class,
			Handicap:  spec.BaseHandicap + i%5,
			IsAllStar: i < spec.AllStars,
			UpdatedAt: time.Now(),
		}

		if i < spec.Riders-spec.NoHistory {
			avgFinish := 4.0 + float64(i)
			avgPoints := 20.0 - float64(i)
			finishRate := 0.9
			trackHistory := 6.0 + float64(i%4)
			momentum := 0.2
			features.AvgFinishLast5 = &avgFinish
			features.AvgFantasyPointsLast5 = &avgPoints
			features.FinishRate = &finishRate
			features.TrackHistory = &trackHistory
			features.RecentMomentum = &momentum
		}

		field = append(field, features)
	}
	return field
}

// WriteStubArtifacts writes loadable model artifacts for both classes into
// dir. Qualification models emit qualProb, finish models emit finishValue.
func WriteStubArtifacts(t *testing.T, dir string, qualProb, finishValue float64) {
	t.Helper()

	// Invert the sigmoid so the constant leaf lands on qualProb.
	logit := math.Log(qualProb / (1 - qualProb))

	qualArtifact := map[string]interface{}{
		"objective":    "binary:logistic",
		"base_score":   0.0,
		"num_features": 5,
		"trees": []map[string]interface{}{
			{"nodes": []map[string]interface{}{{"leaf": true, "value": logit}}},
		},
	}
	finishArtifact := map[string]interface{}{
		"objective":    "reg:squarederror",
		"base_score":   0.0,
		"num_features": 7,
		"trees": []map[string]interface{}{
			{"nodes": []map[string]interface{}{{"leaf": true, "value": finishValue}}},
		},
	}

	for _, class := range models.AllClasses {
		writeArtifact(t, filepath.Join(dir, string(class)+"_qualification.json"), qualArtifact)
		writeArtifact(t, filepath.Join(dir, string(class)+"_finish_position.json"), finishArtifact)
	}
}

func writeArtifact(t *testing.T, path string, artifact map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(artifact)
	require.NoError(t, err, "failed to marshal artifact")
	require.NoError(t, os.WriteFile(path, data, 0o644), "failed to write artifact %s", path)
}

// MockLiveTimingServer creates a mock HTTP server for the live timing API.
func MockLiveTimingServer(t *testing.T, eventID uuid.UUID) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/events":
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{
					"eventId":   eventID,
					"name":      "Main Event",
					"venue":     "Test Stadium",
					"startTime": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
					"isIndoor":  true,
					"status":    "scheduled",
				},
			})

		case "/events/" + eventID.String() + "/qualifying":
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{
					"riderId":   uuid.New(),
					"bikeClass": "450",
					"position":  1,
					"lapTime":   58.431,
					"gap":       0.0,
					"session":   "A",
				},
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	return httptest.NewServer(handler)
}

// InMemoryFeatureRepository is a FeatureRepository backed by a map, for tests
// that exercise the service layer without PostgreSQL.
type InMemoryFeatureRepository struct {
	mu       sync.RWMutex
	features map[uuid.UUID][]*models.RiderFeatures
}

// NewInMemoryFeatureRepository creates an empty in-memory feature repository.
func NewInMemoryFeatureRepository() *InMemoryFeatureRepository {
	return &InMemoryFeatureRepository{
		features: make(map[uuid.UUID][]*models.RiderFeatures),
	}
}

// SetEventFeatures replaces the field stored for an event.
func (r *InMemoryFeatureRepository) SetEventFeatures(eventID uuid.UUID, field []*models.RiderFeatures) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[eventID] = field
}

// GetEventFeatures returns the stored field for an event.
func (r *InMemoryFeatureRepository) GetEventFeatures(ctx context.Context, eventID uuid.UUID) ([]*models.RiderFeatures, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.features[eventID], nil
}

// GetRiderFeatures returns one rider's stored features for an event.
func (r *InMemoryFeatureRepository) GetRiderFeatures(ctx context.Context, eventID, riderID uuid.UUID) (*models.RiderFeatures, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, features := range r.features[eventID] {
		if features.RiderID == riderID {
			return features, nil
		}
	}
	return nil, models.ErrNotFound
}

// Upsert stores or replaces one rider's features.
func (r *InMemoryFeatureRepository) Upsert(ctx context.Context, features *models.RiderFeatures) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	field := r.features[features.EventID]
	for i := range field {
		if field[i].RiderID == features.RiderID {
			field[i] = features
			return nil
		}
	}
	r.features[features.EventID] = append(field, features)
	return nil
}

// InMemoryPredictionRepository is a PredictionRepository backed by a map.
type InMemoryPredictionRepository struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID][]models.RiderPrediction
}

// NewInMemoryPredictionRepository creates an empty in-memory prediction store.
func NewInMemoryPredictionRepository() *InMemoryPredictionRepository {
	return &InMemoryPredictionRepository{
		snapshots: make(map[uuid.UUID][]models.RiderPrediction),
	}
}

// SaveBatch stores the snapshot for the batch's event.
func (r *InMemoryPredictionRepository) SaveBatch(ctx context.Context, predictions []models.RiderPrediction) error {
	if len(predictions) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[predictions[0].EventID] = predictions
	return nil
}

// GetByEvent returns the stored snapshot for an event.
func (r *InMemoryPredictionRepository) GetByEvent(ctx context.Context, eventID uuid.UUID) ([]models.RiderPrediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshots[eventID], nil
}

// DeleteByEvent removes the stored snapshot for an event.
func (r *InMemoryPredictionRepository) DeleteByEvent(ctx context.Context, eventID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, eventID)
	return nil
}

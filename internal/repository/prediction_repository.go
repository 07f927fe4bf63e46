package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/moto-picks/internal/database"
	"github.com/yourusername/moto-picks/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// SaveBatch replaces the stored prediction snapshot for the batch's event.
// All predictions in one batch share an event id.
func (p *PostgresPredictionRepository) SaveBatch(ctx context.Context, predictions []models.RiderPrediction) error {
	if len(predictions) == 0 {
		return nil
	}
	eventID := predictions[0].EventID

	return p.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "DELETE FROM rider_predictions WHERE event_id = $1", eventID)
		if err != nil {
			return fmt.Errorf("failed to clear previous predictions: %w", err)
		}

		query := `
			INSERT INTO rider_predictions (
				rider_id, event_id, bike_class, is_all_star, handicap,
				expected_points, points_if_qualifies, predicted_finish,
				lower_bound, upper_bound, confidence, predicted_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		for i := range predictions {
			pred := &predictions[i]
			_, err := tx.Exec(ctx, query,
				pred.RiderID, pred.EventID, pred.BikeClass, pred.IsAllStar, pred.Handicap,
				pred.ExpectedPoints, pred.PointsIfQualifies, pred.PredictedFinish,
				pred.LowerBound, pred.UpperBound, pred.Confidence, pred.PredictedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert prediction for rider %s: %w", pred.RiderID, err)
			}
		}
		return nil
	})
}

// GetByEvent retrieves the stored prediction snapshot for an event, ordered
// by expected points descending.
func (p *PostgresPredictionRepository) GetByEvent(ctx context.Context, eventID uuid.UUID) ([]models.RiderPrediction, error) {
	query := `
		SELECT rider_id, event_id, bike_class, is_all_star, handicap,
			expected_points, points_if_qualifies, predicted_finish,
			lower_bound, upper_bound, confidence, predicted_at
		FROM rider_predictions
		WHERE event_id = $1
		ORDER BY expected_points DESC, rider_id ASC
	`

	rows, err := p.db.GetPool().Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var results []models.RiderPrediction
	for rows.Next() {
		var pred models.RiderPrediction
		err := rows.Scan(
			&pred.RiderID, &pred.EventID, &pred.BikeClass, &pred.IsAllStar, &pred.Handicap,
			&pred.ExpectedPoints, &pred.PointsIfQualifies, &pred.PredictedFinish,
			&pred.LowerBound, &pred.UpperBound, &pred.Confidence, &pred.PredictedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		results = append(results, pred)
	}

	return results, rows.Err()
}

// DeleteByEvent removes the stored prediction snapshot for an event
func (p *PostgresPredictionRepository) DeleteByEvent(ctx context.Context, eventID uuid.UUID) error {
	_, err := p.db.GetPool().Exec(ctx, "DELETE FROM rider_predictions WHERE event_id = $1", eventID)
	if err != nil {
		return fmt.Errorf("failed to delete predictions: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/moto-picks/internal/database"
	"github.com/yourusername/moto-picks/internal/models"
)

// PostgresFeatureRepository implements FeatureRepository for PostgreSQL
type PostgresFeatureRepository struct {
	db *database.DB
}

// NewPostgresFeatureRepository creates a new feature repository
func NewPostgresFeatureRepository(db *database.DB) FeatureRepository {
	return &PostgresFeatureRepository{db: db}
}

const featureColumns = `rider_id, event_id, bike_class, handicap, is_all_star, is_injured,
	qualifying_position, qualifying_lap_time, qualifying_gap, pick_trend,
	avg_finish_last_5, avg_fantasy_points_last_5, finish_rate, track_history, recent_momentum,
	season_points, is_indoor, updated_at`

func scanFeatures(row pgx.Row) (*models.RiderFeatures, error) {
	features := &models.RiderFeatures{}
	err := row.Scan(
		&features.RiderID, &features.EventID, &features.BikeClass,
		&features.Handicap, &features.IsAllStar, &features.IsInjured,
		&features.QualifyingPosition, &features.QualifyingLapTime, &features.QualifyingGap, &features.PickTrend,
		&features.AvgFinishLast5, &features.AvgFantasyPointsLast5, &features.FinishRate,
		&features.TrackHistory, &features.RecentMomentum,
		&features.SeasonPoints, &features.IsIndoor, &features.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan rider features: %w", err)
	}
	return features, nil
}

// GetEventFeatures retrieves the full rider feature set for an event in a
// stable order. Ordering keeps downstream batch predictions deterministic.
func (f *PostgresFeatureRepository) GetEventFeatures(ctx context.Context, eventID uuid.UUID) ([]*models.RiderFeatures, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rider_features
		WHERE event_id = $1
		ORDER BY bike_class ASC, rider_id ASC
	`, featureColumns)

	rows, err := f.db.GetPool().Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event features: %w", err)
	}
	defer rows.Close()

	var results []*models.RiderFeatures
	for rows.Next() {
		features, err := scanFeatures(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, features)
	}

	return results, rows.Err()
}

// GetRiderFeatures retrieves one rider's features for an event
func (f *PostgresFeatureRepository) GetRiderFeatures(ctx context.Context, eventID, riderID uuid.UUID) (*models.RiderFeatures, error) {
	query := fmt.Sprintf("SELECT %s FROM rider_features WHERE event_id = $1 AND rider_id = $2", featureColumns)
	return scanFeatures(f.db.GetPool().QueryRow(ctx, query, eventID, riderID))
}

// Upsert inserts or replaces a rider's feature row for an event
func (f *PostgresFeatureRepository) Upsert(ctx context.Context, features *models.RiderFeatures) error {
	query := `
		INSERT INTO rider_features (
			rider_id, event_id, bike_class, handicap, is_all_star, is_injured,
			qualifying_position, qualifying_lap_time, qualifying_gap, pick_trend,
			avg_finish_last_5, avg_fantasy_points_last_5, finish_rate, track_history, recent_momentum,
			season_points, is_indoor, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
		ON CONFLICT (rider_id, event_id) DO UPDATE SET
			bike_class = EXCLUDED.bike_class,
			handicap = EXCLUDED.handicap,
			is_all_star = EXCLUDED.is_all_star,
			is_injured = EXCLUDED.is_injured,
			qualifying_position = EXCLUDED.qualifying_position,
			qualifying_lap_time = EXCLUDED.qualifying_lap_time,
			qualifying_gap = EXCLUDED.qualifying_gap,
			pick_trend = EXCLUDED.pick_trend,
			avg_finish_last_5 = EXCLUDED.avg_finish_last_5,
			avg_fantasy_points_last_5 = EXCLUDED.avg_fantasy_points_last_5,
			finish_rate = EXCLUDED.finish_rate,
			track_history = EXCLUDED.track_history,
			recent_momentum = EXCLUDED.recent_momentum,
			season_points = EXCLUDED.season_points,
			is_indoor = EXCLUDED.is_indoor,
			updated_at = NOW()
	`

	_, err := f.db.GetPool().Exec(ctx, query,
		features.RiderID, features.EventID, features.BikeClass,
		features.Handicap, features.IsAllStar, features.IsInjured,
		features.QualifyingPosition, features.QualifyingLapTime, features.QualifyingGap, features.PickTrend,
		features.AvgFinishLast5, features.AvgFantasyPointsLast5, features.FinishRate,
		features.TrackHistory, features.RecentMomentum,
		features.SeasonPoints, features.IsIndoor,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rider features: %w", err)
	}

	return nil
}

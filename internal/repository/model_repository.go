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

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db *database.DB
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db *database.DB) ModelRepository {
	return &PostgresModelRepository{db: db}
}

const modelColumns = `id, bike_class, model_type, sample_count, accuracy, auc, r_squared, mae, artifact_path, trained_at, active, created_at`

func scanModel(row pgx.Row) (*models.TrainedModelResult, error) {
	model := &models.TrainedModelResult{}
	err := row.Scan(
		&model.ID, &model.BikeClass, &model.ModelType, &model.SampleCount,
		&model.Accuracy, &model.AUC, &model.RSquared, &model.MAE,
		&model.ArtifactPath, &model.TrainedAt, &model.Active, &model.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan model record: %w", err)
	}
	return model, nil
}

// Create inserts a new trained model record and deactivates the previous
// active record of the same (bike class, model type) in one transaction.
func (m *PostgresModelRepository) Create(ctx context.Context, model *models.TrainedModelResult) error {
	return m.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"UPDATE trained_models SET active = false WHERE bike_class = $1 AND model_type = $2 AND active = true",
			model.BikeClass, model.ModelType,
		)
		if err != nil {
			return fmt.Errorf("failed to deactivate previous model: %w", err)
		}

		query := `
			INSERT INTO trained_models (id, bike_class, model_type, sample_count, accuracy, auc, r_squared, mae, artifact_path, trained_at, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err = tx.Exec(ctx, query,
			model.ID, model.BikeClass, model.ModelType, model.SampleCount,
			model.Accuracy, model.AUC, model.RSquared, model.MAE,
			model.ArtifactPath, model.TrainedAt, model.Active,
		)
		if err != nil {
			return fmt.Errorf("failed to create model record: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a model record by ID
func (m *PostgresModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainedModelResult, error) {
	query := fmt.Sprintf("SELECT %s FROM trained_models WHERE id = $1", modelColumns)
	return scanModel(m.db.GetPool().QueryRow(ctx, query, id))
}

// GetActive retrieves the active model record for a class and type
func (m *PostgresModelRepository) GetActive(ctx context.Context, class models.BikeClass, modelType models.ModelType) (*models.TrainedModelResult, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM trained_models
		WHERE bike_class = $1 AND model_type = $2 AND active = true
		ORDER BY trained_at DESC
		LIMIT 1
	`, modelColumns)
	return scanModel(m.db.GetPool().QueryRow(ctx, query, class, modelType))
}

// GetAllActive retrieves every active model record
func (m *PostgresModelRepository) GetAllActive(ctx context.Context) ([]*models.TrainedModelResult, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM trained_models
		WHERE active = true
		ORDER BY bike_class ASC, model_type ASC
	`, modelColumns)

	rows, err := m.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active models: %w", err)
	}
	defer rows.Close()

	var results []*models.TrainedModelResult
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, model)
	}

	return results, rows.Err()
}

// GetHistory retrieves recent training runs for a class and type, newest first
func (m *PostgresModelRepository) GetHistory(ctx context.Context, class models.BikeClass, modelType models.ModelType, limit int) ([]*models.TrainedModelResult, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM trained_models
		WHERE bike_class = $1 AND model_type = $2
		ORDER BY trained_at DESC
		LIMIT $3
	`, modelColumns)

	rows, err := m.db.GetPool().Query(ctx, query, class, modelType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query model history: %w", err)
	}
	defer rows.Close()

	var results []*models.TrainedModelResult
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, model)
	}

	return results, rows.Err()
}

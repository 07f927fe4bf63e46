// Package main provides a CLI for inspecting model artifact status.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/moto-picks/internal/config"
	"github.com/yourusername/moto-picks/internal/database"
	"github.com/yourusername/moto-picks/internal/ml"
	"github.com/yourusername/moto-picks/internal/models"
	"github.com/yourusername/moto-picks/internal/repository"
)

var (
	configFile string
	skipDB     bool

	cfg    *config.Config
	appLog *logrus.Logger
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&skipDB, "no-db", false, "Only inspect artifacts on disk, skip training records")
}

var rootCmd = &cobra.Command{
	Use:   "model-status",
	Short: "Check prediction model availability",
	Long:  `Displays which model artifacts are loadable per bike class and stage, and the matching training records when a database is reachable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return displayStatus()
	},
}

func main() {
	defer teardown()
	if err := rootCmd.Execute(); err != nil {
		teardown()
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLog = logrus.New()
	appLog.SetLevel(logrus.WarnLevel)

	if skipDB {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		fmt.Printf("Database unavailable, artifact status only: %v\n\n", err)
		db = nil
		return nil
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func teardown() {
	if db != nil {
		db.Close()
		db = nil
	}
}

func displayStatus() error {
	store := ml.NewArtifactStore(cfg.Models.ArtifactDir, appLog)

	fmt.Printf("Artifact directory: %s\n\n", cfg.Models.ArtifactDir)
	fmt.Println("Artifacts on disk:")

	allTypes := []models.ModelType{models.ModelTypeQualification, models.ModelTypeFinishPosition}
	for _, class := range models.AllClasses {
		for _, modelType := range allTypes {
			key := ml.ArtifactKey{BikeClass: class, ModelType: modelType}
			status := "missing"
			if store.Exists(key) {
				if _, err := store.Load(key); err != nil {
					status = fmt.Sprintf("invalid (%v)", err)
				} else {
					status = "ok"
				}
			}
			fmt.Printf("  %-24s %s\n", key.String()+".json", status)
		}
	}

	if repos == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("\nActive training records:")
	records, err := repos.Model.GetAllActive(ctx)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to load training records: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("  none")
		return nil
	}

	for _, record := range records {
		metric := ""
		switch {
		case record.Accuracy != nil && record.AUC != nil:
			metric = fmt.Sprintf("accuracy=%.3f auc=%.3f", *record.Accuracy, *record.AUC)
		case record.RSquared != nil && record.MAE != nil:
			metric = fmt.Sprintf("r2=%.3f mae=%.3f", *record.RSquared, *record.MAE)
		}
		fmt.Printf("  %s/%s  samples=%d  trained=%s  %s\n",
			record.BikeClass,
			record.ModelType,
			record.SampleCount,
			record.TrainedAt.Format("2006-01-02"),
			metric,
		)
	}

	return nil
}

// Package main provides a CLI for generating event predictions.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/moto-picks/internal/config"
	"github.com/yourusername/moto-picks/internal/database"
	"github.com/yourusername/moto-picks/internal/ml"
	"github.com/yourusername/moto-picks/internal/models"
	"github.com/yourusername/moto-picks/internal/predictor"
	"github.com/yourusername/moto-picks/internal/repository"
)

var (
	configFile string
	eventIDArg string
	classArg   string

	cfg    *config.Config
	appLog *logrus.Logger
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&eventIDArg, "event", "e", "", "Event ID (required)")
	rootCmd.Flags().StringVar(&classArg, "class", "", "Limit output to one bike class (250 or 450)")
	rootCmd.MarkFlagRequired("event")
}

var rootCmd = &cobra.Command{
	Use:   "predict",
	Short: "Generate rider predictions for an event",
	Long:  `Loads rider features for an event, runs the multi-stage prediction pipeline and prints the field sorted by expected fantasy points.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict()
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
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

func runPredict() error {
	eventID, err := uuid.Parse(eventIDArg)
	if err != nil {
		return fmt.Errorf("invalid event id %q: %w", eventIDArg, err)
	}

	var classFilter models.BikeClass
	if classArg != "" {
		classFilter, err = models.ParseBikeClass(classArg)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	featuresList, err := repos.Feature.GetEventFeatures(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}
	if len(featuresList) == 0 {
		return fmt.Errorf("no rider features found for event %s", eventID)
	}

	store := ml.NewArtifactStore(cfg.Models.ArtifactDir, appLog)
	pred := predictor.New(store, predictor.DefaultConfig(), appLog)
	if !pred.IsModelReady() {
		fmt.Fprintln(os.Stderr, "warning: no model artifacts loaded, using fallback heuristics")
	}

	predictions, err := pred.PredictBatch(ctx, featuresList)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].ExpectedPoints > predictions[j].ExpectedPoints
	})

	printPredictions(predictions, classFilter)
	return nil
}

func printPredictions(predictions []models.RiderPrediction, classFilter models.BikeClass) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tRIDER\tFINISH\tPOINTS\tEXPECTED\tCONFIDENCE\tRANGE")

	for _, class := range models.AllClasses {
		if classFilter != "" && class != classFilter {
			continue
		}
		for _, pred := range predictions {
			if pred.BikeClass != class {
				continue
			}

			finish := "DNQ"
			if pred.PredictedFinish != nil {
				finish = fmt.Sprintf("P%d", *pred.PredictedFinish)
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t[%.2f, %.2f]\n",
				pred.BikeClass,
				pred.RiderID,
				finish,
				pred.PointsIfQualifies,
				pred.ExpectedPoints,
				pred.Confidence,
				pred.LowerBound,
				pred.UpperBound,
			)
		}
	}

	w.Flush()
}

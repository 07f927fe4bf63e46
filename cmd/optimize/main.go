// Package main provides a CLI for solving the optimal fantasy team.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/moto-picks/internal/config"
	"github.com/yourusername/moto-picks/internal/database"
	"github.com/yourusername/moto-picks/internal/ml"
	"github.com/yourusername/moto-picks/internal/models"
	"github.com/yourusername/moto-picks/internal/optimizer"
	"github.com/yourusername/moto-picks/internal/predictor"
	"github.com/yourusername/moto-picks/internal/repository"
)

var (
	configFile     string
	eventIDArg     string
	excludeArgs    []string
	noAllStar450   bool
	noAllStar250   bool

	cfg    *config.Config
	appLog *logrus.Logger
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&eventIDArg, "event", "e", "", "Event ID (required)")
	rootCmd.Flags().StringSliceVarP(&excludeArgs, "exclude", "x", nil, "Rider IDs to exclude (repeatable)")
	rootCmd.Flags().BoolVar(&noAllStar450, "no-all-star-450", false, "Drop the exactly-one-All-Star requirement for the 450 class")
	rootCmd.Flags().BoolVar(&noAllStar250, "no-all-star-250", false, "Drop the exactly-one-All-Star requirement for the 250 class")
	rootCmd.MarkFlagRequired("event")
}

var rootCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Solve the optimal 8-rider fantasy team for an event",
	Long:  `Generates predictions for an event and solves for the roster of four 450 and four 250 riders that maximizes total expected fantasy points.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOptimize()
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

func buildConstraints() (models.TeamConstraints, error) {
	constraints := models.DefaultTeamConstraints()
	constraints.RequireAllStar450 = !noAllStar450
	constraints.RequireAllStar250 = !noAllStar250

	for _, arg := range excludeArgs {
		riderID, err := uuid.Parse(arg)
		if err != nil {
			return constraints, fmt.Errorf("invalid rider id %q: %w", arg, err)
		}
		constraints.ExcludedRiders[riderID] = true
	}

	return constraints, nil
}

func runOptimize() error {
	eventID, err := uuid.Parse(eventIDArg)
	if err != nil {
		return fmt.Errorf("invalid event id %q: %w", eventIDArg, err)
	}

	constraints, err := buildConstraints()
	if err != nil {
		return err
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

	solveCtx, solveCancel := context.WithTimeout(ctx, cfg.SolveTimeout())
	defer solveCancel()

	team := optimizer.New(appLog).FindOptimalTeam(solveCtx, predictions, constraints)
	printTeam(team, predictions)
	return nil
}

func printTeam(team *models.OptimalTeam, predictions []models.RiderPrediction) {
	if !team.IsFeasible {
		fmt.Println("No feasible team exists under the given constraints.")
		fmt.Printf("Solve time: %dms\n", team.SolveTimeMs)
		return
	}

	byID := make(map[uuid.UUID]*models.RiderPrediction, len(predictions))
	for i := range predictions {
		byID[predictions[i].RiderID] = &predictions[i]
	}

	printClass := func(label string, riders []uuid.UUID) {
		fmt.Printf("%s:\n", label)
		for _, riderID := range riders {
			if pred, ok := byID[riderID]; ok {
				star := ""
				if pred.IsAllStar {
					star = " *"
				}
				fmt.Printf("  %s  %.2f pts%s\n", riderID, pred.ExpectedPoints, star)
			} else {
				fmt.Printf("  %s\n", riderID)
			}
		}
	}

	printClass("450 class", team.Riders450)
	printClass("250 class", team.Riders250)
	fmt.Printf("\nTotal expected points: %.2f\n", team.TotalExpectedPoints)
	fmt.Printf("Solve time: %dms\n", team.SolveTimeMs)
}

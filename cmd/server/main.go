// Package main provides the entry point for the pick engine service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/moto-picks/internal/config"
	"github.com/yourusername/moto-picks/internal/database"
	"github.com/yourusername/moto-picks/internal/datasource"
	"github.com/yourusername/moto-picks/internal/health"
	"github.com/yourusername/moto-picks/internal/logger"
	"github.com/yourusername/moto-picks/internal/metrics"
	"github.com/yourusername/moto-picks/internal/ml"
	"github.com/yourusername/moto-picks/internal/optimizer"
	"github.com/yourusername/moto-picks/internal/predictor"
	"github.com/yourusername/moto-picks/internal/repository"
	"github.com/yourusername/moto-picks/internal/scheduler"
	"github.com/yourusername/moto-picks/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Moto Picks engine starting")

	metrics.InitRegistry()

	// Initialize database connection
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := database.NewDB(dbCtx, &cfg.Database)
	dbCancel()
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	// Initialize repositories
	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	// Initialize prediction pipeline
	store := ml.NewArtifactStore(cfg.Models.ArtifactDir, appLog)
	predictorCfg := predictor.DefaultConfig()
	if cfg.Predictor.QualificationCutoff > 0 {
		predictorCfg.QualificationCutoff = cfg.Predictor.QualificationCutoff
	}
	if cfg.Predictor.IntervalMargin > 0 {
		predictorCfg.IntervalMargin = cfg.Predictor.IntervalMargin
	}
	if cfg.Predictor.FallbackMargin > 0 {
		predictorCfg.FallbackMargin = cfg.Predictor.FallbackMargin
	}
	if cfg.Predictor.FallbackQualificationRate > 0 {
		predictorCfg.FallbackQualificationRate = cfg.Predictor.FallbackQualificationRate
	}

	pred := predictor.New(store, predictorCfg, appLog)
	if !pred.IsModelReady() {
		appLog.Warn("No model artifacts loaded; serving fallback predictions until artifacts arrive")
	}

	solver := optimizer.New(appLog)

	predictionService := service.NewPredictionService(
		repos.Feature,
		repos.Prediction,
		pred,
		solver,
		cfg.CacheTTL(),
		appLog,
	)

	// Initialize live timing client
	httpClient := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), appLog)
	defer httpClient.Close()
	liveTiming := datasource.NewLiveTimingClient(httpClient, cfg.LiveTiming.APIURL, cfg.LiveTiming.APIKey, appLog)

	// Initialize scheduler jobs
	sched := scheduler.NewScheduler(pred, predictionService, liveTiming, appLog)
	if err := sched.ScheduleModelReload(cfg.ModelReloadInterval()); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule model reload")
	}
	if err := sched.ScheduleQualifyingPolling(cfg.LiveTiming.PollingIntervalSeconds); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule qualifying polling")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	// Initialize live timing stream
	if cfg.LiveTiming.StreamEnabled {
		stream := datasource.NewLiveTimingStream(cfg.LiveTiming.StreamURL, cfg.LiveTiming.APIKey, appLog)
		stream.AddHandler(func(event datasource.StreamEvent) error {
			switch event.Type {
			case datasource.StreamEventQualifyingUpdate,
				datasource.StreamEventHandicapChange,
				datasource.StreamEventEntryListChange,
				datasource.StreamEventRaceComplete:
				predictionService.InvalidateEvent(ctx, event.EventID)
			}
			return nil
		})

		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.WithError(err).Error("Live timing stream stopped")
			}
		}()
		appLog.WithField("url", cfg.LiveTiming.StreamURL).Info("Live timing stream enabled")
	}

	// Start health and metrics server
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Metrics.Port),
		Logger:      appLog,
		DB:          db,
		Models:      pred,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"model_ready":    pred.IsModelReady(),
		"stream_enabled": cfg.LiveTiming.StreamEnabled,
		"cache_ttl":      cfg.CacheTTL().String(),
	}).Info("Moto Picks engine is running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	// Graceful shutdown
	healthServer.SetReady(false)
	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}

	// Give components time to cleanup
	time.Sleep(2 * time.Second)

	appLog.Info("Moto Picks engine shut down successfully")
}

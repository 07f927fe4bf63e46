// Package scheduler runs periodic maintenance jobs for the pick engine.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/moto-picks/internal/datasource"
)

// ModelReloader reloads model artifacts from disk.
type ModelReloader interface {
	Reload()
}

// EventInvalidator drops cached predictions for an event.
type EventInvalidator interface {
	InvalidateEvent(ctx context.Context, eventID uuid.UUID)
}

// QualifyingSource provides upcoming events and their qualifying results.
type QualifyingSource interface {
	GetUpcomingEvents(ctx context.Context) ([]datasource.EventInfo, error)
	GetQualifyingResults(ctx context.Context, eventID uuid.UUID) ([]datasource.QualifyingResult, error)
}

// Scheduler manages scheduled maintenance jobs
type Scheduler struct {
	cron            *cron.Cron
	reloader        ModelReloader
	invalidator     EventInvalidator
	qualifying      QualifyingSource
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration

	// last observed qualifying result count per event, for change detection
	qualifyingSeen map[uuid.UUID]int
}

// NewScheduler creates a new scheduler
func NewScheduler(reloader ModelReloader, invalidator EventInvalidator, qualifying QualifyingSource, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		reloader:        reloader,
		invalidator:     invalidator,
		qualifying:      qualifying,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
		qualifyingSeen:  make(map[uuid.UUID]int),
	}
}

// ScheduleModelReload schedules periodic model artifact reloads
func (s *Scheduler) ScheduleModelReload(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if interval < time.Minute {
		interval = time.Minute
	}

	jobFunc := func() {
		s.logger.Debug("Reloading model artifacts")
		s.reloader.Reload()
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval", interval.String()).Info("Scheduled model reload job")

	return nil
}

// ScheduleQualifyingPolling schedules live qualifying polling. New qualifying
// results invalidate the affected event's cached predictions.
func (s *Scheduler) ScheduleQualifyingPolling(intervalSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if intervalSeconds < 5 {
		intervalSeconds = 5
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(intervalSeconds-1)*time.Second)
		defer cancel()
		s.pollQualifying(ctx)
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", intervalSeconds), jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval_seconds", intervalSeconds).Info("Scheduled qualifying polling job")

	return nil
}

func (s *Scheduler) pollQualifying(ctx context.Context) {
	events, err := s.qualifying.GetUpcomingEvents(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Qualifying poll failed to list events")
		return
	}

	for _, event := range events {
		results, err := s.qualifying.GetQualifyingResults(ctx, event.EventID)
		if err != nil {
			s.logger.WithError(err).WithField("event_id", event.EventID).
				Warn("Failed to fetch qualifying results")
			continue
		}

		s.mu.Lock()
		seen := s.qualifyingSeen[event.EventID]
		changed := len(results) != seen
		s.qualifyingSeen[event.EventID] = len(results)
		s.mu.Unlock()

		if changed {
			s.logger.WithFields(logrus.Fields{
				"event_id": event.EventID,
				"results":  len(results),
				"previous": seen,
			}).Info("Qualifying results changed, invalidating predictions")
			s.invalidator.InvalidateEvent(ctx, event.EventID)
		}
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out waiting for running jobs")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

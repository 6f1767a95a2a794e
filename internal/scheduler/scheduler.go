package scheduler

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"compsage/server/config"
	"compsage/server/internal/database"
)

// Scheduler runs the background maintenance jobs: the adjustment
// session retention sweep and the coordinate backfill for records the
// feeds delivered without lat/lng.
type Scheduler struct {
	db       *database.Database
	geocoder database.Geocoder
	logger   *logrus.Logger
	config   *config.Config
	cron     *cron.Cron
}

// NewScheduler creates a new scheduler
func NewScheduler(db *database.Database, geocoder database.Geocoder, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		db:       db,
		geocoder: geocoder,
		logger:   logger,
		config:   cfg,
		cron:     cron.New(),
	}
}

// Start registers the cron jobs and begins running them. Both jobs also
// run once shortly after startup so a long-stopped server catches up
// without waiting for the next scheduled slot.
func (s *Scheduler) Start() error {
	if s.config.Retention.SessionTTLDays > 0 {
		if _, err := s.cron.AddFunc(s.config.Retention.SweepSchedule, s.sweepSessions); err != nil {
			return fmt.Errorf("failed to schedule session sweep: %v", err)
		}
	}

	if s.config.Geocoding.Enabled {
		if _, err := s.cron.AddFunc(s.config.Geocoding.Schedule, s.backfillCoordinates); err != nil {
			return fmt.Errorf("failed to schedule coordinate backfill: %v", err)
		}
	}

	go func() {
		s.logger.Info("Running startup maintenance jobs")
		if s.config.Retention.SessionTTLDays > 0 {
			s.sweepSessions()
		}
		if s.config.Geocoding.Enabled {
			s.backfillCoordinates()
		}
		s.logger.Info("Startup maintenance jobs completed")
	}()

	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for any running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// sweepSessions removes adjustment sessions whose last update is past
// the retention window.
func (s *Scheduler) sweepSessions() {
	ttl := time.Duration(s.config.Retention.SessionTTLDays) * 24 * time.Hour
	cutoff := time.Now().UTC().Add(-ttl)

	removed, err := s.db.DeleteSessionsOlderThan(cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Session retention sweep failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"removed": removed,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Session retention sweep completed")
}

// backfillCoordinates geocodes stored properties that are missing
// coordinates.
func (s *Scheduler) backfillCoordinates() {
	s.logger.Info("Starting coordinate backfill")

	processed, failed, err := s.db.UpdateMissingCoordinates(s.geocoder)
	if err != nil {
		s.logger.WithError(err).Error("Coordinate backfill failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"processed": processed,
		"failed":    failed,
	}).Info("Coordinate backfill completed")
}

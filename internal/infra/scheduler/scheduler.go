package scheduler

import (
	"context"
	"fmt"
	"time"

	"payment_reminder/internal/app"
	"payment_reminder/internal/domain/schedule"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	sweepTimeout   = 1 * time.Minute
	refreshTimeout = 5 * time.Minute // Longer timeout: reads every subscription
)

// Dispatcher is the part of app.DispatchService the sweep job drives.
type Dispatcher interface {
	SyncNotificationPermissions(ctx context.Context) (bool, error)
	CheckAndDispatchNotifications(ctx context.Context) (*app.SweepResult, error)
}

// Refresher is the part of app.ScheduleService the refresh job drives.
type Refresher interface {
	RefreshSchedule(ctx context.Context) ([]*schedule.Entry, error)
}

// ReminderScheduler is the timer that drives dispatch sweeps and schedule refreshes.
type ReminderScheduler struct {
	cronEngine       *cron.Cron
	dispatcher       Dispatcher
	refresher        Refresher
	logger           *logrus.Entry
	cronSpecDispatch string
	cronSpecRefresh  string
}

func NewReminderScheduler(
	dispatcher Dispatcher,
	refresher Refresher,
	logger *logrus.Entry,
	loc *time.Location,
	cronSpecDispatch string, // e.g., "* * * * *" (every minute)
	cronSpecRefresh string, // e.g., "*/15 * * * *" (every 15 minutes)
) *ReminderScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderScheduler{
		cronEngine:       cron.New(cron.WithLocation(loc)),
		dispatcher:       dispatcher,
		refresher:        refresher,
		logger:           logger,
		cronSpecDispatch: cronSpecDispatch,
		cronSpecRefresh:  cronSpecRefresh,
	}
}

// Start registers both jobs and starts the cron engine. Invalid specs are returned, not fatal.
func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecDispatch, func() { s.RunSweep(context.Background()) }); err != nil {
		return fmt.Errorf("could not add dispatch cron job: %w", err)
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecRefresh, func() { s.RunRefresh(context.Background()) }); err != nil {
		return fmt.Errorf("could not add schedule refresh cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"dispatch": s.cronSpecDispatch,
		"refresh":  s.cronSpecRefresh,
	}).Info("Reminder scheduler started with jobs.")
	return nil
}

// RunSweep syncs the platform permission and then dispatches due reminders.
func (s *ReminderScheduler) RunSweep(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, sweepTimeout)
	defer cancel()

	if _, err := s.dispatcher.SyncNotificationPermissions(ctx); err != nil {
		s.logger.WithError(err).Error("Error during permission sync")
	}
	res, err := s.dispatcher.CheckAndDispatchNotifications(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error during dispatch sweep")
		return
	}
	if res.Ready > 0 {
		s.logger.WithFields(logrus.Fields{"ready": res.Ready, "dispatched": res.Dispatched}).Debug("Sweep job finished")
	}
}

func (s *ReminderScheduler) RunRefresh(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, refreshTimeout)
	defer cancel()

	entries, err := s.refresher.RefreshSchedule(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error during schedule refresh")
		return
	}
	s.logger.WithField("entries", len(entries)).Debug("Refresh job finished")
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Reminder scheduler gracefully stopped.")
}

// Package scheduler periodically reminds the learner about due cards.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/BenWassa/vox/internal/clock"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Default notification window
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, due int) error
}

// DueCounter counts the cards that are due at an instant
type DueCounter interface {
	CountDue(ctx context.Context, at time.Time) (int, error)
}

// Config controls when reminders go out
type Config struct {
	Interval time.Duration
	// Reminders are only sent when the local hour is within [StartHour, EndHour].
	// A window with StartHour > EndHour wraps around midnight.
	StartHour int
	EndHour   int
	// Location of the learner; time.Local when nil
	Location *time.Location
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     DueCounter
	notifier  Notifier
	clock     clock.Clock
	config    Config
	logger    *zap.Logger
}

// New creates a new scheduler instance
func New(store DueCounter, notifier Notifier, clk clock.Clock, config Config, logger *zap.Logger) *Scheduler {
	if clk == nil {
		clk = clock.System{}
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		store:     store,
		notifier:  notifier,
		clock:     clk,
		config:    config,
		logger:    logger.Named("scheduler"),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if s.config.Interval <= 0 {
		return fmt.Errorf("reminder interval must be positive, got %s", s.config.Interval)
	}

	if _, err := s.scheduler.Every(s.config.Interval).Do(s.checkAndSendReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders: %v", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.logger.Info("reminder scheduler started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders is the scheduled job
func (s *Scheduler) checkAndSendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.RunCheck(ctx); err != nil {
		s.logger.Error("reminder check failed", zap.Error(err))
	}
}

// RunCheck sends a reminder if cards are due and the current hour is inside the
// notification window. It reports whether a reminder was sent.
func (s *Scheduler) RunCheck(ctx context.Context) (bool, error) {
	now := s.clock.Now()
	hour := now.In(s.config.Location).Hour()

	if !withinHours(hour, s.config.StartHour, s.config.EndHour) {
		s.logger.Debug("outside notification hours, skipping reminders",
			zap.Int("hour", hour),
			zap.Int("start", s.config.StartHour),
			zap.Int("end", s.config.EndHour),
		)
		return false, nil
	}

	due, err := s.store.CountDue(ctx, now)
	if err != nil {
		return false, fmt.Errorf("failed to count due cards: %w", err)
	}
	if due == 0 {
		return false, nil
	}

	if err := s.notifier.SendReminder(ctx, due); err != nil {
		return false, err
	}
	return true, nil
}

func withinHours(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}

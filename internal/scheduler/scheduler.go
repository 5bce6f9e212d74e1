package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Purger removes expired entries and reports how many it dropped.
type Purger interface {
	PurgeExpired() int
}

// Scheduler periodically sweeps expired entries from the weather cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	purger    Purger
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. A nil logger uses slog.Default.
func New(purger Purger, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		purger:    purger,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the sweep and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval < time.Minute {
		interval = 30 * time.Minute
	}

	_, err := s.scheduler.Every(interval).WaitForSchedule().SingletonMode().Do(s.sweep)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("cache sweep scheduled", "interval", interval.String())
	return nil
}

func (s *Scheduler) sweep() {
	n := s.purger.PurgeExpired()
	s.logger.Info("cache sweep completed", "removed", n)
}

// Stop stops the scheduler and cancels any future sweeps.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

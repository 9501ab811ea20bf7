package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 15 * time.Minute

// Sweeper drops expired entries from a cache and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

// Scheduler periodically sweeps caches.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweepers  []Sweeper
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, sweepers ...Sweeper) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweepers:  sweepers,
		interval:  interval,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.sweepers) == 0 {
		slog.Info("scheduler: nothing to sweep; not scheduling")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() { s.RunOnce() })
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	slog.Info("scheduler: started", "interval", s.interval.String())
	return nil
}

// RunOnce sweeps every registered cache and returns the total removed.
func (s *Scheduler) RunOnce() int {
	total := 0
	for _, sw := range s.sweepers {
		total += sw.Sweep()
	}
	if total > 0 {
		slog.Debug("scheduler: swept expired cache entries", "removed", total)
	}
	return total
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

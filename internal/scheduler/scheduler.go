// Package scheduler runs the freshness sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"getjobs/internal/config"
	"getjobs/internal/pkg/logging"

	"github.com/robfig/cron/v3"
)

type Sweeper interface {
	RunOnce(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	logger   *logging.Logger
	schedule string
	timeout  time.Duration
}

func New(cfg config.SweeperConfig, sweeper Sweeper, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load sweep timezone %q: %w", cfg.Timezone, err)
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "0 0 * * *"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	logger = logger.With("component", "scheduler")
	cl := logging.CronLogger{L: logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &Scheduler{cron: c, sweeper: sweeper, logger: logger, schedule: schedule, timeout: timeout}, nil
}

// Start registers the sweep and starts the cron loop. A failed run is logged
// and left for the next tick.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.logger.Info("cron started", "schedule", s.schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("cron stop timed out, sweep still running")
	}
	s.logger.Info("cron stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.sweeper.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled sweep failed", "err", err)
	}
}

package job

import (
	"context"
	"time"

	"getjobs/internal/domain/job"
	"getjobs/internal/pkg/logging"
	"getjobs/internal/repository"
)

const sweepLockPrefix = "jobs:sweep:lock:"

type Sweeper struct {
	jobs           repository.JobRepository
	cache          Cache
	events         EventPublisher
	logger         *logging.Logger
	staleAfterDays int
	now            func() time.Time
	loc            *time.Location
}

func NewSweeper(jobs repository.JobRepository, cache Cache, events EventPublisher, logger *logging.Logger, staleAfterDays int) *Sweeper {
	if staleAfterDays <= 0 {
		staleAfterDays = 30
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Sweeper{
		jobs:           jobs,
		cache:          cache,
		events:         events,
		logger:         logger.With("component", "sweeper"),
		staleAfterDays: staleAfterDays,
		now:            time.Now,
		loc:            time.UTC,
	}
}

func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// WithLocation sets the zone whose calendar the sweep counts days in.
func (s *Sweeper) WithLocation(loc *time.Location) *Sweeper {
	if loc != nil {
		s.loc = loc
	}
	return s
}

func (s *Sweeper) today() time.Time {
	return job.Today(s.now().In(s.loc))
}

// Cutoff is the oldest confirmation date that still counts as live.
func (s *Sweeper) Cutoff() time.Time {
	return s.today().AddDate(0, 0, -s.staleAfterDays)
}

// RunOnce demotes every live posting confirmed before the cutoff. It returns
// the number of demoted postings. When another replica already swept today
// it returns zero without touching the store.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	today := s.today()
	if s.cache != nil {
		lockKey := sweepLockPrefix + today.Format(time.DateOnly)
		ok, err := s.cache.SetIfNotExists(ctx, lockKey, "1", 23*time.Hour)
		if err == nil && !ok {
			s.logger.Info("sweep skipped, already ran today", "day", today.Format(time.DateOnly))
			return 0, nil
		}
	}

	return s.Sweep(ctx)
}

// Sweep demotes stale postings without taking the daily lock.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff()
	s.logger.Info("sweep started", "cutoff", cutoff.Format(time.DateOnly))

	n, err := s.jobs.ExpireStale(ctx, cutoff)
	if err != nil {
		s.logger.Error("sweep failed", "cutoff", cutoff.Format(time.DateOnly), "err", err)
		return 0, err
	}

	if n > 0 {
		invalidateSearch(ctx, s.cache, s.logger)
		if s.events != nil {
			s.events.PublishJobsUpdated(ActionExpired, nil)
		}
	}

	s.logger.Info("sweep completed", "demoted", n)
	return n, nil
}

// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenCleaner is satisfied by *auth.Service.
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	lastRun map[string]time.Time
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		timeout: time.Minute,
		lastRun: make(map[string]time.Time),
	}
}

// Add registers fn under name. A run that overlaps the previous one is skipped.
func (s *Scheduler) Add(name, schedule string, fn func(ctx context.Context) error) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.Run(name, fn)
	}))

	entryID, err := s.cron.AddJob(schedule, job)
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}
	s.logger.Info("job scheduled", "job", name, "schedule", schedule, "entry_id", entryID)
	return nil
}

// AddTokenCleanup removes expired refresh tokens on schedule.
func (s *Scheduler) AddTokenCleanup(schedule string, cleaner TokenCleaner) error {
	return s.Add("token-cleanup", schedule, func(ctx context.Context) error {
		removed, err := cleaner.CleanupExpiredTokens(ctx)
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "expired refresh tokens removed", "count", removed)
		return nil
	})
}

// Run executes one job immediately with the scheduler's timeout.
func (s *Scheduler) Run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.ErrorContext(ctx, "job failed", "job", name, "error", err)
	} else {
		s.logger.DebugContext(ctx, "job finished", "job", name, "duration", time.Since(start))
	}

	s.mu.Lock()
	s.lastRun[name] = start
	s.mu.Unlock()
}

func (s *Scheduler) LastRun(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastRun[name]
	return t, ok
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		s.logger.Info("next job run", "entry_id", entry.ID, "next", entry.Next)
	}
}

// Stop waits for running jobs or ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("jobs still running at shutdown")
	}
}

// Package scheduler wires up the cron job that periodically triggers full
// pipeline runs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
)

// Runner is the pipeline operation the scheduler drives.
type Runner interface {
	Run(ctx context.Context) (domain.RunSummary, error)
}

// Scheduler wraps robfig/cron and manages the periodic run loop. Runs may
// overlap under a slow provider; the pipeline's durable dedup makes that
// safe.
type Scheduler struct {
	cron       *cron.Cron
	runner     Runner
	logger     logger.Logger
	spec       string
	runOnStart bool

	mu sync.Mutex
	wg sync.WaitGroup
}

// New creates a scheduler firing every interval.
func New(runner Runner, interval time.Duration, runOnStart bool, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		runner:     runner,
		logger:     log,
		spec:       fmt.Sprintf("@every %s", interval),
		runOnStart: runOnStart,
	}
}

// Start registers the job and starts the cron loop. With runOnStart it
// also fires one run immediately, non-blocking, so matches appear without
// waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", logger.String("spec", s.spec))

	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runOnce(ctx)
		}()
	}

	return nil
}

// Stop stops the cron loop and waits for an in-flight startup run.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled run failed", logger.Error(err))
		return
	}

	s.logger.Info("scheduled run complete",
		logger.Int("wants_searched", summary.WantsSearched),
		logger.Int("new_matches", summary.NewMatches),
		logger.Int("emails_sent", summary.EmailsSent),
	)
}

// Package scheduler triggers the daily vendor-deficit dispatch at the
// configured hour. It is an injectable service with an idempotent Start so a
// process can never register the job twice.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/apollostores/poplanner/internal/config"
)

// DispatchRunner is the single operation the scheduler drives.
type DispatchRunner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to DispatchRunner.
type RunnerFunc func(ctx context.Context) error

// Run implements DispatchRunner.
func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// Scheduler manages the daily dispatch job.
type Scheduler struct {
	cron    *cron.Cron
	runner  DispatchRunner
	spec    string
	started atomic.Bool
	logger  *zap.Logger
}

// New builds a scheduler firing once per day at cfg.Hour in cfg.Timezone.
// The cron granularity is one minute; firing once per matching minute is
// guaranteed by the cron library, so no sleep-through-the-minute guard is
// needed.
func New(cfg config.DispatchConfig, runner DispatchRunner, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		runner: runner,
		spec:   fmt.Sprintf("0 %d * * *", cfg.Hour),
		logger: logger,
	}, nil
}

// Start registers the daily job and starts the cron loop. Subsequent calls
// are no-ops.
func (s *Scheduler) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		s.logger.Debug("scheduler already started")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.runDispatch); err != nil {
		s.started.Store(false)
		return fmt.Errorf("schedule dispatch job %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop stops the cron loop; the running job, if any, completes.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDispatch() {
	s.logger.Info("daily dispatch triggered")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.runner.Run(ctx); err != nil {
		s.logger.Error("daily dispatch failed", zap.Error(err))
		return
	}
	s.logger.Info("daily dispatch completed")
}

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"jobradar/internal/model"
)

// cycleRunner executes one ingestion cycle.
type cycleRunner interface {
	Run(ctx context.Context) (model.RunBatch, error)
}

// Scheduler owns watch mode: one immediate cycle, then one per tick
// until the context is cancelled.
type Scheduler struct {
	runner   cycleRunner
	interval time.Duration
	logger   *slog.Logger
}

func New(runner cycleRunner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. A failed cycle is logged and the loop keeps
// ticking; returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting watch loop", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down watch loop")
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.Error("cycle failed", "error", err)
	}
}

package bot

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultSweepInterval is how often the scheduled sweep fires,
	// measured from the end of the previous one.
	DefaultSweepInterval = 300 * time.Second
	// DefaultDrainInterval bounds command latency between sweeps.
	DefaultDrainInterval = time.Second
)

// Runner is the single-threaded outer loop: drain commands every tick
// (cheap), run a scheduled sweep when due (expensive). A sweep blocks
// draining for its duration, which bounds worst-case command
// responsiveness to one sweep length; the stop signal is the only path
// that reaches into a running sweep.
type Runner struct {
	dispatcher    *Dispatcher
	sweeper       *Sweeper
	sweepInterval time.Duration
	drainInterval time.Duration
	logger        *zap.Logger
}

// NewRunner constructs a Runner.
func NewRunner(
	dispatcher *Dispatcher,
	sweeper *Sweeper,
	sweepInterval time.Duration,
	drainInterval time.Duration,
	logger *zap.Logger,
) *Runner {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	if drainInterval <= 0 {
		drainInterval = DefaultDrainInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		dispatcher:    dispatcher,
		sweeper:       sweeper,
		sweepInterval: sweepInterval,
		drainInterval: drainInterval,
		logger:        logger,
	}
}

// Run blocks until the context finishes. The first scheduled sweep runs
// immediately.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("engine started",
		zap.Duration("sweep_interval", r.sweepInterval),
		zap.Duration("drain_interval", r.drainInterval),
	)

	ticker := time.NewTicker(r.drainInterval)
	defer ticker.Stop()

	lastSweepEnd := time.Now().Add(-r.sweepInterval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("engine stopping")
			return ctx.Err()
		case <-ticker.C:
			r.dispatcher.Drain(ctx)
			if time.Since(lastSweepEnd) >= r.sweepInterval {
				r.sweeper.Scheduled(ctx)
				lastSweepEnd = time.Now()
			}
		}
	}
}

// Package bot drives the result monitoring engine: the sweep
// controller, the command dispatcher, the health probe, and the outer
// loop tying them together.
package bot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharani043/result-bot/internal/fetch"
	"github.com/dharani043/result-bot/internal/metrics"
	"github.com/dharani043/result-bot/internal/monitor"
	"github.com/dharani043/result-bot/internal/registry"
)

// DefaultBatchSize chunks a forced sweep so cancellation and portal
// errors are observed without finishing the whole registry.
const DefaultBatchSize = 10

// Sweeper runs full-registry passes and notifies subscribers whose
// result newly became available.
type Sweeper struct {
	registry    *registry.Registry
	fetcher     *fetch.Orchestrator
	notifier    monitor.Notifier
	stop        *monitor.StopSignal
	adminChatID int64
	batchSize   int
	logger      *zap.Logger
}

// NewSweeper constructs a Sweeper.
func NewSweeper(
	reg *registry.Registry,
	fetcher *fetch.Orchestrator,
	notifier monitor.Notifier,
	stop *monitor.StopSignal,
	adminChatID int64,
	batchSize int,
	logger *zap.Logger,
) *Sweeper {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		registry:    reg,
		fetcher:     fetcher,
		notifier:    notifier,
		stop:        stop,
		adminChatID: adminChatID,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// Scheduled runs the periodic fire-and-forget pass over the whole
// registry. A portal error for any subscriber aborts the remainder of
// the pass and reports the degradation to the admin chat exactly once;
// nobody is marked notified in that pass.
func (s *Sweeper) Scheduled(ctx context.Context) {
	s.stop.Reset()

	sweepID := uuid.NewString()
	logger := s.logger.With(zap.String("sweep_id", sweepID), zap.String("trigger", "scheduled"))

	subs, err := s.registry.All(ctx)
	if err != nil {
		// Registry unavailable: skip this pass entirely rather than
		// sweep against a state we cannot persist back to.
		logger.Error("load registry failed, skipping sweep", zap.Error(err))
		metrics.SweepFinished("scheduled", "registry_error")
		return
	}
	metrics.SubscriberCount(len(subs))
	if len(subs) == 0 {
		return
	}
	logger.Info("sweep started", zap.Int("subscribers", len(subs)))

	results := s.fetcher.FetchAll(ctx, subs, s.stop)

	notified := 0
	for _, sub := range subs {
		if s.stop.Stopped() {
			logger.Info("sweep stopped by admin", zap.Int("notified", notified))
			metrics.SweepFinished("scheduled", "stopped")
			return
		}
		outcome, ok := results[sub.Roll]
		if !ok {
			continue
		}
		switch outcome.Kind {
		case monitor.OutcomePortalError:
			logger.Warn("portal degraded, aborting sweep", zap.String("roll", sub.Roll))
			if err := s.notifier.Send(ctx, s.adminChatID, msgPortalDegraded); err != nil {
				logger.Warn("degraded notice not delivered", zap.Error(err))
			}
			metrics.SweepFinished("scheduled", "portal_degraded")
			return
		case monitor.OutcomeText:
			if sub.Notified {
				continue
			}
			if s.deliver(ctx, logger, sub, outcome.Text, msgResultOut) {
				notified++
			}
		}
	}

	logger.Info("sweep finished", zap.Int("notified", notified))
	metrics.SweepFinished("scheduled", "ok")
}

// Forced runs an operator-initiated pass in fixed-size batches and
// returns how many subscribers were notified. Portal errors only skip
// the affected subscriber: the operator asked for the pass and partial
// completion is acceptable.
func (s *Sweeper) Forced(ctx context.Context) (int, error) {
	sweepID := uuid.NewString()
	logger := s.logger.With(zap.String("sweep_id", sweepID), zap.String("trigger", "forced"))

	subs, err := s.registry.All(ctx)
	if err != nil {
		metrics.SweepFinished("forced", "registry_error")
		return 0, fmt.Errorf("load registry: %w", err)
	}
	metrics.SubscriberCount(len(subs))
	if len(subs) == 0 {
		return 0, nil
	}
	logger.Info("sweep started", zap.Int("subscribers", len(subs)))

	notified := 0
	for start := 0; start < len(subs); start += s.batchSize {
		if s.stop.Stopped() {
			break
		}
		end := min(start+s.batchSize, len(subs))
		batch := subs[start:end]

		results := s.fetcher.FetchAll(ctx, batch, s.stop)

		for _, sub := range batch {
			if s.stop.Stopped() {
				break
			}
			outcome, ok := results[sub.Roll]
			if !ok || outcome.Kind != monitor.OutcomeText || sub.Notified {
				continue
			}
			if s.deliver(ctx, logger, sub, outcome.Text, msgResultUpdate) {
				notified++
			}
		}
	}

	status := "ok"
	if s.stop.Stopped() {
		status = "stopped"
	}
	logger.Info("sweep finished", zap.Int("notified", notified), zap.String("status", status))
	metrics.SweepFinished("forced", status)
	return notified, nil
}

// deliver hands one result to the notifier and, on success, durably
// marks the subscriber so no later sweep re-sends it. A failed send is
// left unmarked and retried naturally by the next sweep.
func (s *Sweeper) deliver(
	ctx context.Context,
	logger *zap.Logger,
	sub monitor.Subscriber,
	result string,
	header string,
) bool {
	text := fmt.Sprintf("%s\n\n👤 Roll No: %s\n\n%s", header, sub.Roll, result)
	if err := s.notifier.Send(ctx, sub.ChatID, text); err != nil {
		logger.Warn("notification not delivered",
			zap.String("roll", sub.Roll),
			zap.Int64("chat_id", sub.ChatID),
			zap.Error(err),
		)
		return false
	}
	metrics.NotificationSent()

	if err := s.registry.MarkNotified(ctx, sub.Key()); err != nil {
		// The send went out but the flag did not persist; the next
		// sweep may duplicate this one notification.
		logger.Error("mark notified failed",
			zap.String("roll", sub.Roll),
			zap.Error(err),
		)
		return false
	}
	return true
}

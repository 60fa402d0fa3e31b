package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/dharani043/result-bot/internal/monitor"
	"github.com/dharani043/result-bot/internal/registry"
)

// HealthChecker probes portal health using one existing subscriber as
// the test subject. It never mutates the registry.
type HealthChecker struct {
	registry *registry.Registry
	prober   monitor.Prober
	pinger   monitor.Pinger
	logger   *zap.Logger
}

// NewHealthChecker constructs a HealthChecker.
func NewHealthChecker(
	reg *registry.Registry,
	prober monitor.Prober,
	pinger monitor.Pinger,
	logger *zap.Logger,
) *HealthChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthChecker{
		registry: reg,
		prober:   prober,
		pinger:   pinger,
		logger:   logger,
	}
}

// Check reports the portal's state. The reachability ping runs first so
// an unreachable portal is reported as down rather than guessed at from
// a failed probe; then a single credential probe against the first
// subscriber classifies the rest.
func (h *HealthChecker) Check(ctx context.Context) monitor.Health {
	subs, err := h.registry.All(ctx)
	if err != nil {
		h.logger.Warn("health check could not load registry", zap.Error(err))
		return monitor.HealthPortalDown
	}
	if len(subs) == 0 {
		return monitor.HealthNoSubscribers
	}

	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn("portal unreachable", zap.Error(err))
			return monitor.HealthPortalDown
		}
	}

	subject := subs[0]
	outcome := h.prober.Probe(ctx, subject.Roll, subject.DOB)
	switch outcome.Kind {
	case monitor.OutcomeText:
		return monitor.HealthOK
	case monitor.OutcomePortalError:
		return monitor.HealthDBDown
	default:
		return monitor.HealthNoResult
	}
}

// Package fetch runs credential probes for batches of subscribers with
// a fixed concurrency ceiling.
package fetch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dharani043/result-bot/internal/metrics"
	"github.com/dharani043/result-bot/internal/monitor"
)

// DefaultConcurrency bounds simultaneous portal sessions. The portal is
// resource-heavy per session; 3-5 is the workable range.
const DefaultConcurrency = 3

// Orchestrator fans out probes over a limiter channel. Per-subscriber
// failures are isolated: one probe's panic or error never aborts a
// sibling, it just records OutcomeNoResult for that subscriber.
type Orchestrator struct {
	prober monitor.Prober
	limit  int
	logger *zap.Logger
}

// New creates an Orchestrator with the given concurrency ceiling.
func New(prober monitor.Prober, limit int, logger *zap.Logger) *Orchestrator {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		prober: prober,
		limit:  limit,
		logger: logger,
	}
}

// FetchAll probes every subscriber and returns a map of outcomes keyed
// by roll. It returns once every subscriber has a recorded outcome, or
// earlier with the partial map collected so far when the stop signal is
// observed. Individual probes are never retried here; the next sweep
// picks them up.
func (o *Orchestrator) FetchAll(
	ctx context.Context,
	subs []monitor.Subscriber,
	stop *monitor.StopSignal,
) map[string]monitor.Outcome {
	results := make(map[string]monitor.Outcome, len(subs))
	if len(subs) == 0 {
		return results
	}

	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	limiter := make(chan struct{}, o.limit)
	completed := make(chan struct{}, len(subs))

	launched := 0
	for _, sub := range subs {
		if stop.Stopped() || probeCtx.Err() != nil {
			break
		}
		launched++
		wg.Add(1)
		go func(sub monitor.Subscriber) {
			defer wg.Done()
			defer func() { completed <- struct{}{} }()

			select {
			case limiter <- struct{}{}:
			case <-probeCtx.Done():
				return
			}
			defer func() { <-limiter }()

			outcome := o.probe(probeCtx, sub)
			if probeCtx.Err() != nil {
				return
			}
			mu.Lock()
			results[sub.Roll] = outcome
			mu.Unlock()
		}(sub)
	}

	for i := 0; i < launched; i++ {
		<-completed
		if stop.Stopped() {
			// Abandon in-flight probes; cancellation unblocks them and
			// keeps their late outcomes out of the map.
			cancel()
			break
		}
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	snapshot := make(map[string]monitor.Outcome, len(results))
	for roll, outcome := range results {
		snapshot[roll] = outcome
	}
	return snapshot
}

// probe isolates one subscriber's fetch: a panic inside the prober is
// contained and recorded as OutcomeNoResult.
func (o *Orchestrator) probe(ctx context.Context, sub monitor.Subscriber) (outcome monitor.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("probe panicked",
				zap.String("roll", sub.Roll),
				zap.Any("panic", r),
			)
			outcome = monitor.NoResult()
		}
	}()

	start := time.Now()
	outcome = o.prober.Probe(ctx, sub.Roll, sub.DOB)
	metrics.ProbeRecorded(outcomeLabel(outcome), time.Since(start).Seconds())

	o.logger.Debug("probe finished",
		zap.String("roll", sub.Roll),
		zap.String("outcome", outcomeLabel(outcome)),
		zap.Duration("took", time.Since(start)),
	)
	return outcome
}

func outcomeLabel(outcome monitor.Outcome) string {
	switch outcome.Kind {
	case monitor.OutcomeText:
		return "result"
	case monitor.OutcomePortalError:
		return "portal_error"
	default:
		return "no_result"
	}
}

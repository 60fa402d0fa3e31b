package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dharani043/result-bot/internal/monitor"
	"github.com/dharani043/result-bot/internal/registry"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	okPing := pingerFunc(func(context.Context) error { return nil })
	oneSub := []monitor.Subscriber{{Roll: "A1", DOB: "d", ChatID: 100}}

	tests := []struct {
		name    string
		subs    []monitor.Subscriber
		loadErr error
		pinger  monitor.Pinger
		outcome monitor.Outcome
		want    monitor.Health
	}{
		{
			name:    "result available",
			subs:    oneSub,
			pinger:  okPing,
			outcome: monitor.TextOutcome("Math: 90"),
			want:    monitor.HealthOK,
		},
		{
			name:    "portal database degraded",
			subs:    oneSub,
			pinger:  okPing,
			outcome: monitor.PortalError(),
			want:    monitor.HealthDBDown,
		},
		{
			name:    "portal up but no result yet",
			subs:    oneSub,
			pinger:  okPing,
			outcome: monitor.NoResult(),
			want:    monitor.HealthNoResult,
		},
		{
			name:   "portal unreachable",
			subs:   oneSub,
			pinger: pingerFunc(func(context.Context) error { return assert.AnError }),
			want:   monitor.HealthPortalDown,
		},
		{
			name:   "no subscribers to probe with",
			pinger: okPing,
			want:   monitor.HealthNoSubscribers,
		},
		{
			name:    "registry unavailable",
			loadErr: assert.AnError,
			pinger:  okPing,
			want:    monitor.HealthPortalDown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &memStore{subs: tt.subs, loadErr: tt.loadErr}
			prober := &scriptProber{outcomes: map[string]monitor.Outcome{"A1": tt.outcome}}
			checker := NewHealthChecker(registry.New(store), prober, tt.pinger, nil)

			assert.Equal(t, tt.want, checker.Check(context.Background()))
		})
	}
}

func TestHealthCheckNilPingerSkipsReachability(t *testing.T) {
	t.Parallel()

	store := &memStore{subs: []monitor.Subscriber{{Roll: "A1", DOB: "d", ChatID: 100}}}
	prober := &scriptProber{outcomes: map[string]monitor.Outcome{
		"A1": monitor.TextOutcome("Math: 90"),
	}}
	checker := NewHealthChecker(registry.New(store), prober, nil, nil)

	assert.Equal(t, monitor.HealthOK, checker.Check(context.Background()))
}

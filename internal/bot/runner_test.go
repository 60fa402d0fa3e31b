package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharani043/result-bot/internal/monitor"
	"github.com/dharani043/result-bot/internal/registry"
)

func TestRunnerFirstSweepIsImmediate(t *testing.T) {
	t.Parallel()

	store := &memStore{subs: []monitor.Subscriber{
		{Roll: "A1", DOB: "d", ChatID: 100},
	}}
	prober := &scriptProber{outcomes: map[string]monitor.Outcome{
		"A1": monitor.TextOutcome("Math: 90"),
	}}
	notifier := &recordingNotifier{}
	sweeper := newTestSweeper(store, prober, notifier, &monitor.StopSignal{}, 10)

	dispatcher, err := NewDispatcher(
		&fakeSource{}, &memCursor{}, registry.New(store), notifier,
		&fakeSweeper{}, &fakeHealth{}, &monitor.StopSignal{},
		adminChat, 300*time.Second, nil,
	)
	require.NoError(t, err)

	// A one-hour sweep interval proves the first pass does not wait for
	// it.
	runner := NewRunner(dispatcher, sweeper, time.Hour, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for len(notifier.sentTo(100)) == 0 {
		select {
		case <-deadline:
			t.Fatal("no notification observed before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}

	assert.Len(t, notifier.sentTo(100), 1, "later ticks must not re-sweep within the interval")
}

func TestRunnerDrainsCommandsBetweenSweeps(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	notifier := &recordingNotifier{}
	sweeper := newTestSweeper(store, &scriptProber{}, notifier, &monitor.StopSignal{}, 10)

	source := &fakeSource{commands: []monitor.Command{
		{Seq: 1, ChatID: 100, Text: "/help"},
	}}
	dispatcher, err := NewDispatcher(
		source, &memCursor{}, registry.New(store), notifier,
		&fakeSweeper{}, &fakeHealth{}, &monitor.StopSignal{},
		adminChat, 300*time.Second, nil,
	)
	require.NoError(t, err)

	runner := NewRunner(dispatcher, sweeper, time.Hour, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for len(notifier.sentTo(100)) == 0 {
		select {
		case <-deadline:
			t.Fatal("command reply not observed before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

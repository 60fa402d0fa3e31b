package monitor

import "sync/atomic"

// StopSignal is the cooperative cancellation token for sweeps. An
// administrative stop command trips it; the fetch orchestrator and the
// sweep controller observe it between batches and between individual
// probe completions. It is reset at the start of every sweep and is
// never persisted.
type StopSignal struct {
	flag atomic.Bool
}

// Trip requests that in-progress fetch work stop at the next check.
func (s *StopSignal) Trip() {
	s.flag.Store(true)
}

// Reset clears the signal ahead of a new sweep.
func (s *StopSignal) Reset() {
	s.flag.Store(false)
}

// Stopped reports whether a stop has been requested.
func (s *StopSignal) Stopped() bool {
	if s == nil {
		return false
	}
	return s.flag.Load()
}

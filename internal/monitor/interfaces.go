package monitor

import "context"

// Prober performs a single portal interaction for one subscriber and
// classifies the response. Implementations are timeout-bounded and
// never fail: transport, timeout and parse errors all map to
// OutcomeNoResult.
type Prober interface {
	Probe(ctx context.Context, roll, dob string) Outcome
}

// Pinger is a cheap reachability check against the portal, used by the
// health probe to tell "portal down" apart from "database down".
type Pinger interface {
	Ping(ctx context.Context) error
}

// Notifier delivers one text message to a chat endpoint. Delivery is
// best-effort: callers must not treat an error as fatal, but the error
// is surfaced so a retry queue could be layered on later.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Store persists the full subscriber set. Mutations follow a
// read-then-write pattern over the whole set, which is only safe under
// the engine's single-writer model.
type Store interface {
	Load(ctx context.Context) ([]Subscriber, error)
	Save(ctx context.Context, subs []Subscriber) error
	Close() error
}

// CommandSource returns inbound commands with sequence id greater than
// after, in ascending order. Every update in the stream is returned,
// including non-text ones, so the cursor advances past them too.
type CommandSource interface {
	Commands(ctx context.Context, after int64) ([]Command, error)
}

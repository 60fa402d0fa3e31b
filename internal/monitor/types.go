// Package monitor defines the core types shared by the result
// monitoring engine: subscriber records, probe outcomes, and the
// interfaces its collaborators implement.
package monitor

import "strings"

// Key uniquely identifies a subscription. The same roll number may be
// tracked by several chats, but a given chat tracks a roll at most once.
type Key struct {
	Roll   string
	ChatID int64
}

// Subscriber is one tracked (roll, dob, chat) tuple. Notified flips to
// true exactly once, after a result has been fetched and handed to the
// notifier, and never reverts.
type Subscriber struct {
	Roll     string `json:"roll"`
	DOB      string `json:"dob"`
	ChatID   int64  `json:"chat_id"`
	Notified bool   `json:"notified"`
}

// Key returns the uniqueness key for the subscriber.
func (s Subscriber) Key() Key {
	return Key{Roll: s.Roll, ChatID: s.ChatID}
}

// NormalizeRoll canonicalizes a roll number the way the portal expects it.
func NormalizeRoll(roll string) string {
	return strings.ToUpper(strings.TrimSpace(roll))
}

// OutcomeKind discriminates the variants of a probe outcome.
type OutcomeKind int

const (
	// OutcomeNoResult means the portal answered but has no result for
	// this subscriber yet. Transient probe failures also map here so a
	// glitch is never mistaken for a portal outage.
	OutcomeNoResult OutcomeKind = iota

	// OutcomeText means a result was published; Text carries it.
	OutcomeText

	// OutcomePortalError means the portal itself is degraded (for
	// example database maintenance). It is load-bearing: a scheduled
	// sweep abandons its remainder rather than misreport every
	// remaining subscriber as "no result".
	OutcomePortalError
)

// Outcome is the classified result of a single portal probe.
type Outcome struct {
	Kind OutcomeKind
	Text string
}

// TextOutcome wraps a published result.
func TextOutcome(text string) Outcome {
	return Outcome{Kind: OutcomeText, Text: text}
}

// NoResult reports that nothing is published yet.
func NoResult() Outcome {
	return Outcome{Kind: OutcomeNoResult}
}

// PortalError reports that the portal is degraded.
func PortalError() Outcome {
	return Outcome{Kind: OutcomePortalError}
}

// Health is the state reported by the health probe.
type Health int

const (
	// HealthOK means the portal answered with a result for the probe subject.
	HealthOK Health = iota
	// HealthDBDown means the portal is reachable but its backing
	// database is under maintenance.
	HealthDBDown
	// HealthNoResult means the portal is up but has nothing published
	// for the probe subject.
	HealthNoResult
	// HealthPortalDown means the portal could not be reached at all.
	HealthPortalDown
	// HealthNoSubscribers means no probe subject was available.
	HealthNoSubscribers
)

// String renders the health state for logs and status replies.
func (h Health) String() string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthDBDown:
		return "db_down"
	case HealthNoResult:
		return "no_result"
	case HealthPortalDown:
		return "portal_down"
	case HealthNoSubscribers:
		return "no_subscribers"
	default:
		return "unknown"
	}
}

// Command is one inbound administrative message. Seq is the stream
// sequence id the cursor tracks; Text may be empty for non-text updates,
// which still advance the cursor.
type Command struct {
	Seq    int64
	ChatID int64
	Text   string
}

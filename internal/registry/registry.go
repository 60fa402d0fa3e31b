// Package registry implements the durable subscriber registry over a
// pluggable whole-set store.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharani043/result-bot/internal/monitor"
)

// ErrAlreadyExists is returned by Add when the (roll, chat) key is
// already registered.
var ErrAlreadyExists = errors.New("subscriber already exists")

// ErrNotFound is returned by Remove and MarkNotified when no record
// matches the key.
var ErrNotFound = errors.New("subscriber not found")

// Registry provides idempotent add/remove/list/mark-notified over the
// persisted subscriber set. Every mutation loads the current state,
// applies the change, and writes the full set back before returning.
// Callers must serialize mutations; the engine's single-writer loop
// guarantees that.
type Registry struct {
	store monitor.Store
}

// New creates a Registry backed by the given store.
func New(store monitor.Store) *Registry {
	return &Registry{store: store}
}

// Add registers a subscriber. The roll is normalized before storing.
// Returns ErrAlreadyExists if the (roll, chat) key is present; the
// stored record is left untouched in that case.
func (r *Registry) Add(ctx context.Context, sub monitor.Subscriber) error {
	sub.Roll = monitor.NormalizeRoll(sub.Roll)
	if sub.Roll == "" {
		return fmt.Errorf("roll is required")
	}
	if sub.DOB == "" {
		return fmt.Errorf("dob is required")
	}

	subs, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load subscribers: %w", err)
	}
	for _, existing := range subs {
		if existing.Key() == sub.Key() {
			return ErrAlreadyExists
		}
	}
	subs = append(subs, sub)
	if err := r.store.Save(ctx, subs); err != nil {
		return fmt.Errorf("save subscribers: %w", err)
	}
	return nil
}

// Remove deletes the record matching the key. Returns ErrNotFound and
// leaves the registry unchanged if nothing matched.
func (r *Registry) Remove(ctx context.Context, key monitor.Key) error {
	key.Roll = monitor.NormalizeRoll(key.Roll)

	subs, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load subscribers: %w", err)
	}
	kept := subs[:0:0]
	for _, sub := range subs {
		if sub.Key() != key {
			kept = append(kept, sub)
		}
	}
	if len(kept) == len(subs) {
		return ErrNotFound
	}
	if err := r.store.Save(ctx, kept); err != nil {
		return fmt.Errorf("save subscribers: %w", err)
	}
	return nil
}

// All returns every subscriber in insertion order.
func (r *Registry) All(ctx context.Context) ([]monitor.Subscriber, error) {
	subs, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	return subs, nil
}

// ListChat returns the subscribers tracked by one chat, in insertion order.
func (r *Registry) ListChat(ctx context.Context, chatID int64) ([]monitor.Subscriber, error) {
	subs, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	var mine []monitor.Subscriber
	for _, sub := range subs {
		if sub.ChatID == chatID {
			mine = append(mine, sub)
		}
	}
	return mine, nil
}

// MarkNotified flips the record's notified flag to true. The flag never
// reverts; marking an already-notified record is a no-op.
func (r *Registry) MarkNotified(ctx context.Context, key monitor.Key) error {
	subs, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load subscribers: %w", err)
	}
	found := false
	for i := range subs {
		if subs[i].Key() == key {
			found = true
			if subs[i].Notified {
				return nil
			}
			subs[i].Notified = true
		}
	}
	if !found {
		return ErrNotFound
	}
	if err := r.store.Save(ctx, subs); err != nil {
		return fmt.Errorf("save subscribers: %w", err)
	}
	return nil
}

// Package store is the durable client-local storage shared across reloads:
// the serialized answer ledger and the dark-mode preference. It is written
// on every ledger mutation and cleared only on successful finalization or
// explicit reset.
package store

import "context"

// Store abstracts the durable key/value storage behind the session.
type Store interface {
	// SetAnswer write-throughs a single ledger entry under key.
	// field is a "SUBJECT|questionId" composite, value a lower-case code.
	SetAnswer(ctx context.Context, key, field, value string) error
	// Answers returns all persisted entries for key (empty map when none).
	Answers(ctx context.Context, key string) (map[string]string, error)
	// Clear removes all entries under key.
	Clear(ctx context.Context, key string) error

	// Get returns a plain value ("" when absent).
	Get(ctx context.Context, key string) (string, error)
	// Set stores a plain value.
	Set(ctx context.Context, key, value string) error
}

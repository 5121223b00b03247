package storage

import (
	"context"

	"github.com/tanoret/validation-databse/core"
)

// EmbeddingCache persists per-case embedding vectors together with the
// content hash of the text that produced them. Implementations must be
// thread-safe: scoring reads entries while warm-up writes them, and a reader
// must observe either the previous valid entry or the new complete one,
// never a partially written vector.
type EmbeddingCache interface {
	// GetEntry retrieves the cache entry for a case.
	// Returns ErrNotFound if no entry exists.
	GetEntry(ctx context.Context, caseID string) (*core.EmbeddingEntry, error)

	// GetEntries retrieves cache entries for multiple cases.
	// Returns only the entries that exist (no error for missing cases).
	GetEntries(ctx context.Context, caseIDs ...string) ([]*core.EmbeddingEntry, error)

	// PutEntries stores entries, replacing any previous entry per case id.
	// Writes are idempotent and atomic per entry.
	PutEntries(ctx context.Context, entries ...*core.EmbeddingEntry) error

	// DeleteEntries removes entries by case id. Missing ids are ignored.
	DeleteEntries(ctx context.Context, caseIDs ...string) error

	// Close closes the cache backend and releases resources.
	Close() error
}

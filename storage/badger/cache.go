package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/tanoret/validation-databse/core"
	"github.com/tanoret/validation-databse/storage"
)

// EmbeddingCache implements storage.EmbeddingCache on BadgerDB.
// Each entry is written under its own key in a single transaction, so a
// concurrent reader sees either the previous entry or the new complete one.
type EmbeddingCache struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates an embedding cache on the given backend.
func NewEmbeddingCache(backend *Backend) (*EmbeddingCache, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &EmbeddingCache{
		backend: backend,
		logger:  slog.Default().With("component", "embedding-cache"),
	}, nil
}

// GetEntry retrieves the cache entry for a case.
func (c *EmbeddingCache) GetEntry(ctx context.Context, caseID string) (*core.EmbeddingEntry, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var entry *core.EmbeddingEntry
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingEntryKey(caseID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: case %q", storage.ErrNotFound, caseID)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = storage.UnmarshalEmbeddingEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntries retrieves cache entries for multiple cases, skipping missing ones.
func (c *EmbeddingCache) GetEntries(ctx context.Context, caseIDs ...string) ([]*core.EmbeddingEntry, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	entries := make([]*core.EmbeddingEntry, 0, len(caseIDs))
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range caseIDs {
			item, err := tx.Get(makeEmbeddingEntryKey(id))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			var entry *core.EmbeddingEntry
			err = item.Value(func(val []byte) error {
				entry, err = storage.UnmarshalEmbeddingEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// PutEntries stores entries, replacing any previous entry per case id.
func (c *EmbeddingCache) PutEntries(ctx context.Context, entries ...*core.EmbeddingEntry) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		if entry.CaseId == "" {
			return storage.ErrEmptyCaseId
		}
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			data := storage.MarshalEmbeddingEntry(entry)
			if err := tx.Set(makeEmbeddingEntryKey(entry.CaseId), data); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// DeleteEntries removes entries by case id. Missing ids are ignored.
func (c *EmbeddingCache) DeleteEntries(ctx context.Context, caseIDs ...string) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(caseIDs) == 0 {
		return nil
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range caseIDs {
			if err := tx.Delete(makeEmbeddingEntryKey(id)); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// Close closes the underlying backend.
func (c *EmbeddingCache) Close() error {
	if c.backend.IsClosed() {
		return nil
	}
	return c.backend.Close()
}

// Package reindex rebuilds the per-case embedding cache.
//
// It batches case documents, embeds each batch through the configured
// provider with retry and exponential backoff, and writes normalized vectors
// to the cache keyed by case id. Batches run concurrently on a worker pool;
// entries are idempotent, so completion order does not matter and a
// cancelled run leaves already-written entries valid.
//
// The search layer uses the same batch processor for lazy warm-up of
// missing or stale entries; the cmd/vvsearch reindex command uses the
// Reindexer for full rebuilds with progress reporting.
package reindex

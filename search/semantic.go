package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tanoret/validation-databse/ai"
	"github.com/tanoret/validation-databse/core"
	"github.com/tanoret/validation-databse/reindex"
	"github.com/tanoret/validation-databse/storage"
)

// SemanticScorer ranks cases by cosine similarity between the query
// embedding and cached case embeddings. It exists only when an embedding
// provider is configured; hosts without one leave it nil and the Searcher
// ranks lexically. Any provider failure is returned to the Searcher, which
// degrades to the lexical path for that query.
type SemanticScorer struct {
	db        *core.Database
	cache     storage.EmbeddingCache
	embedder  ai.Embedder
	processor *reindex.BatchProcessor
	batchSize int
	workers   int
	logger    *slog.Logger
}

// SemanticOption configures a SemanticScorer.
type SemanticOption func(*SemanticScorer)

// WithWarmupBatchSize sets the batch size for lazy cache warm-up.
func WithWarmupBatchSize(size int) SemanticOption {
	return func(s *SemanticScorer) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithWarmupWorkers sets the worker pool size for lazy cache warm-up.
func WithWarmupWorkers(workers int) SemanticOption {
	return func(s *SemanticScorer) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithSemanticLogger sets a custom logger.
func WithSemanticLogger(logger *slog.Logger) SemanticOption {
	return func(s *SemanticScorer) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewSemanticScorer creates a semantic scorer over the given database,
// embedding cache, and provider.
func NewSemanticScorer(db *core.Database, cache storage.EmbeddingCache, embedder ai.Embedder, opts ...SemanticOption) (*SemanticScorer, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}

	processor, err := reindex.NewBatchProcessor(cache, embedder, 3, 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	s := &SemanticScorer{
		db:        db,
		cache:     cache,
		embedder:  embedder,
		processor: processor,
		batchSize: 64,
		workers:   2,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Score embeds the query and ranks every case with a valid cache entry.
// Missing or stale entries are embedded first (the lazy warm-up); the query
// embedding itself is computed fresh every time, queries are rarely repeated
// verbatim. Cancellation mid-warm-up leaves completed entries reusable.
func (s *SemanticScorer) Score(ctx context.Context, query string) ([]match, error) {
	return s.score(ctx, query, nil)
}

// score is Score restricted to the allowed candidate set; nil means every
// case is a candidate. Warm-up still covers the whole database so the cache
// stays complete regardless of the filters in effect.
func (s *SemanticScorer) score(ctx context.Context, query string, allowed map[string]bool) ([]match, error) {
	docs := reindex.CollectDocuments(s.db)
	if len(docs) == 0 {
		return nil, nil
	}

	stale, err := reindex.StaleDocuments(ctx, s.cache, docs)
	if err != nil {
		return nil, fmt.Errorf("cache read failed: %w", err)
	}
	if len(stale) > 0 {
		s.logger.Debug("warming embedding cache", "stale", len(stale), "total", len(docs))
		if err := s.processor.ProcessAll(ctx, stale, s.batchSize, s.workers, nil); err != nil {
			return nil, fmt.Errorf("cache warm-up failed: %w", err)
		}
	}

	qv, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	text := make(map[string]string, len(docs))
	for _, d := range docs {
		if allowed != nil && !allowed[d.CaseId] {
			continue
		}
		ids = append(ids, d.CaseId)
		text[d.CaseId] = d.Text
	}

	entries, err := s.cache.GetEntries(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("cache read failed: %w", err)
	}

	matches := make([]match, 0, len(entries))
	for _, entry := range entries {
		if !entry.Valid(text[entry.CaseId]) {
			// Raced with an external edit since warm-up; skip rather than
			// score against a vector for different text.
			continue
		}
		matches = append(matches, match{
			CaseId: entry.CaseId,
			Score:  reindex.CosineSimilarity(qv, entry.Vector),
		})
	}
	sortMatches(matches)
	return matches, nil
}

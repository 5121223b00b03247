package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanoret/validation-databse/ai/mock"
	"github.com/tanoret/validation-databse/core"
	"github.com/tanoret/validation-databse/storage"
	"github.com/tanoret/validation-databse/storage/badger"
)

func newTestCache(t *testing.T) storage.EmbeddingCache {
	t.Helper()
	cache, err := badger.NewMemoryCache()
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestNewSemanticScorer(t *testing.T) {
	cache := newTestCache(t)

	t.Run("nil database", func(t *testing.T) {
		_, err := NewSemanticScorer(nil, cache, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, ErrDatabaseRequired)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSemanticScorer(fatigueDatabase(t), cache, nil)
		assert.Error(t, err)
	})

	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSemanticScorer(fatigueDatabase(t), cache, mock.NewMockEmbedder(),
			WithWarmupBatchSize(8), WithWarmupWorkers(1))
		require.NoError(t, err)
		assert.NotNil(t, s)
	})
}

func TestSemanticScorerScore(t *testing.T) {
	ctx := context.Background()

	t.Run("warms cache then ranks all cases", func(t *testing.T) {
		cache := newTestCache(t)
		db := fatigueDatabase(t)
		scorer, err := NewSemanticScorer(db, cache, mock.NewMockEmbedder())
		require.NoError(t, err)

		matches, err := scorer.Score(ctx, "fatigue")
		require.NoError(t, err)
		assert.Len(t, matches, db.Len())

		// Warm-up populated an entry per case.
		entries, err := cache.GetEntries(ctx, db.CaseIds()...)
		require.NoError(t, err)
		assert.Len(t, entries, db.Len())
	})

	t.Run("deterministic ordering and scores", func(t *testing.T) {
		cache := newTestCache(t)
		scorer, err := NewSemanticScorer(fatigueDatabase(t), cache, mock.NewMockEmbedder())
		require.NoError(t, err)

		first, err := scorer.Score(ctx, "fatigue crack")
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, err := scorer.Score(ctx, "fatigue crack")
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("valid cache entries are not recomputed", func(t *testing.T) {
		cache := newTestCache(t)
		embedder := mock.NewMockEmbedder()
		scorer, err := NewSemanticScorer(fatigueDatabase(t), cache, embedder)
		require.NoError(t, err)

		_, err = scorer.Score(ctx, "first query")
		require.NoError(t, err)
		warmCalls := embedder.CallCount()

		_, err = scorer.Score(ctx, "second query")
		require.NoError(t, err)
		// Only the query embedding call, no batch re-embedding.
		assert.Equal(t, warmCalls+1, embedder.CallCount())
	})

	t.Run("stale entry is recomputed after text change", func(t *testing.T) {
		cache := newTestCache(t)
		embedder := mock.NewMockEmbedder()

		db1 := fatigueDatabase(t)
		scorer1, err := NewSemanticScorer(db1, cache, embedder)
		require.NoError(t, err)
		_, err = scorer1.Score(ctx, "fatigue")
		require.NoError(t, err)

		staleEntry, err := cache.GetEntry(ctx, "C1")
		require.NoError(t, err)

		// Reload with edited case text, same cache.
		db2, err := core.NewDatabase([]*core.Case{
			{Id: "C1", Title: "weld fatigue crack growth revisited"},
			{Id: "C2", Title: "thermal fatigue analysis"},
			{Id: "C3", Title: "seismic load test"},
		}, nil)
		require.NoError(t, err)

		scorer2, err := NewSemanticScorer(db2, cache, embedder)
		require.NoError(t, err)
		_, err = scorer2.Score(ctx, "fatigue")
		require.NoError(t, err)

		freshEntry, err := cache.GetEntry(ctx, "C1")
		require.NoError(t, err)
		assert.NotEqual(t, staleEntry.Hash, freshEntry.Hash)
		assert.NotEqual(t, staleEntry.Vector, freshEntry.Vector)

		// Untouched case kept its entry.
		c2Entry, err := cache.GetEntry(ctx, "C2")
		require.NoError(t, err)
		doc, err := db2.Document("C2")
		require.NoError(t, err)
		assert.True(t, c2Entry.Valid(doc))
	})

	t.Run("provider failure surfaces as error", func(t *testing.T) {
		cache := newTestCache(t)
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("quota exceeded")
		}

		scorer, err := NewSemanticScorer(fatigueDatabase(t), cache, embedder)
		require.NoError(t, err)
		_, err = scorer.Score(ctx, "fatigue")
		assert.Error(t, err)
	})

	t.Run("query embedding failure surfaces as error", func(t *testing.T) {
		cache := newTestCache(t)
		embedder := mock.NewMockEmbedder()
		scorer, err := NewSemanticScorer(fatigueDatabase(t), cache, embedder)
		require.NoError(t, err)

		// Warm the cache first, then fail only single-text calls.
		_, err = scorer.Score(ctx, "fatigue")
		require.NoError(t, err)
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("timeout")
		}
		_, err = scorer.Score(ctx, "fatigue")
		assert.Error(t, err)
	})

	t.Run("empty database yields no matches", func(t *testing.T) {
		cache := newTestCache(t)
		db, err := core.NewDatabase(nil, nil)
		require.NoError(t, err)
		scorer, err := NewSemanticScorer(db, cache, mock.NewMockEmbedder())
		require.NoError(t, err)

		matches, err := scorer.Score(ctx, "anything")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("scores are cosine similarities, invariant to query vector scale", func(t *testing.T) {
		cache := newTestCache(t)
		embedder := mock.NewMockEmbedder()
		scorer, err := NewSemanticScorer(fatigueDatabase(t), cache, embedder)
		require.NoError(t, err)

		base, err := scorer.Score(ctx, "fatigue")
		require.NoError(t, err)
		require.NotEmpty(t, base)

		// Same direction, four times the magnitude: cosine must not move.
		// A power-of-two scale keeps the arithmetic exact in float32.
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			v := mock.DeterministicVector(text, 384)
			for i := range v {
				v[i] *= 4
			}
			return v, nil
		}
		scaled, err := scorer.Score(ctx, "fatigue")
		require.NoError(t, err)
		assert.Equal(t, base, scaled)
	})

	t.Run("equal scores break ties by ascending case id", func(t *testing.T) {
		cache := newTestCache(t)
		embedder := mock.NewMockEmbedder()
		// Every text maps to the same vector: all scores equal.
		same := []float32{1, 0, 0}
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return same, nil
		}
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = same
			}
			return vectors, nil
		}

		scorer, err := NewSemanticScorer(fatigueDatabase(t), cache, embedder)
		require.NoError(t, err)
		matches, err := scorer.Score(ctx, "fatigue")
		require.NoError(t, err)
		assert.Equal(t, []string{"C1", "C2", "C3"}, matchIds(matches))
	})
}

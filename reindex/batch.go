package reindex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/tanoret/validation-databse/ai"
	"github.com/tanoret/validation-databse/core"
	"github.com/tanoret/validation-databse/storage"
)

// Document pairs a case id with the searchable text to embed.
type Document struct {
	CaseId string
	Text   string
}

// CollectDocuments builds the embedding input for every case, in ascending
// case id order.
func CollectDocuments(db *core.Database) []Document {
	docs := make([]Document, 0, db.Len())
	for _, id := range db.CaseIds() {
		text, err := db.Document(id)
		if err != nil {
			// CaseIds only yields known ids
			continue
		}
		docs = append(docs, Document{CaseId: id, Text: text})
	}
	return docs
}

// StaleDocuments filters docs down to those with no cache entry or an entry
// whose content hash no longer matches the document text.
func StaleDocuments(ctx context.Context, cache storage.EmbeddingCache, docs []Document) ([]Document, error) {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.CaseId
	}

	entries, err := cache.GetEntries(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byId := make(map[string]*core.EmbeddingEntry, len(entries))
	for _, e := range entries {
		byId[e.CaseId] = e
	}

	stale := make([]Document, 0)
	for _, d := range docs {
		if !byId[d.CaseId].Valid(d.Text) {
			stale = append(stale, d)
		}
	}
	return stale, nil
}

// BatchProcessor embeds batches of case documents and writes the resulting
// cache entries. Vectors are normalized after embedding so cosine scoring
// can use plain dot products.
type BatchProcessor struct {
	cache          storage.EmbeddingCache
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(cache storage.EmbeddingCache, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) (*BatchProcessor, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &BatchProcessor{
		cache:          cache,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}, nil
}

// Process generates embeddings for a batch of documents and stores them.
func (bp *BatchProcessor) Process(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(vectors) != len(docs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(docs), len(vectors))
	}

	entries := make([]*core.EmbeddingEntry, len(docs))
	for i, d := range docs {
		entries[i] = &core.EmbeddingEntry{
			CaseId: d.CaseId,
			Hash:   core.HashContent(d.Text),
			Vector: NormalizeVector(vectors[i]),
		}
	}

	return bp.cache.PutEntries(ctx, entries...)
}

// ProcessAll splits docs into batches of batchSize and processes them on a
// worker pool of the given size. Batch requests are independent; completion
// order does not matter because cache writes are keyed and idempotent. The
// first batch error is returned, but remaining batches still run — their
// entries stay valid for later queries. onBatch, if non-nil, is called with
// the size of each completed batch.
func (bp *BatchProcessor) ProcessAll(ctx context.Context, docs []Document, batchSize, workers int, onBatch func(n int)) error {
	if len(docs) == 0 {
		return nil
	}
	if batchSize < 1 {
		batchSize = 1
	}
	if workers < 1 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		batch := docs[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := bp.Process(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			if onBatch != nil {
				onBatch(len(batch))
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}

	wg.Wait()
	return firstErr
}

// Copyright 2025 Tanoret
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/tanoret/validation-databse/ai"
	"github.com/tanoret/validation-databse/core"
	"github.com/tanoret/validation-databse/storage"
)

// Config holds configuration for the cache rebuild operation.
type Config struct {
	// BatchSize is the number of case documents per embedding request
	BatchSize int

	// Workers is the worker pool size for concurrent batch requests
	Workers int

	// ReportInterval is how often to report progress (number of cases)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		BatchSize:      64,
		Workers:        workers,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer rebuilds the embedding cache for a validation database.
type Reindexer struct {
	db        *core.Database
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(db *core.Database, cache storage.EmbeddingCache, embedder ai.Embedder, config *Config, progress io.Writer) (*Reindexer, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	processor, err := NewBatchProcessor(cache, embedder, config.MaxRetries, config.RetryDelay)
	if err != nil {
		return nil, err
	}

	return &Reindexer{
		db:        db,
		config:    config,
		progress:  progress,
		processor: processor,
	}, nil
}

// Run rebuilds the cache. With force set, every case is re-embedded; without
// it, only cases with missing or stale entries are processed.
// Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context, force bool) error {
	docs := CollectDocuments(r.db)
	if len(docs) == 0 {
		fmt.Fprintf(r.progress, "No cases found in database (0 cases)\n")
		return nil
	}

	if !force {
		stale, err := StaleDocuments(ctx, r.processor.cache, docs)
		if err != nil {
			return fmt.Errorf("failed to check cache state: %w", err)
		}
		if len(stale) == 0 {
			fmt.Fprintf(r.progress, "Embedding cache is up to date (%d cases)\n", len(docs))
			return nil
		}
		docs = stale
	}

	fmt.Fprintf(r.progress, "Embedding %d cases (batch size: %d, workers: %d)\n",
		len(docs), r.config.BatchSize, r.config.Workers)

	tracker := NewProgressTracker(r.progress, len(docs), r.config.ReportInterval)
	tracker.Start()

	err := r.processor.ProcessAll(ctx, docs, r.config.BatchSize, r.config.Workers, tracker.Increment)
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Embedded %d cases in %v (%.1f cases/sec)\n",
		len(docs), elapsed.Round(time.Second), float64(len(docs))/elapsed.Seconds())

	return nil
}

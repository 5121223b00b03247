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


package validationdb

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tanoret/validation-databse/ai"
	"github.com/tanoret/validation-databse/ai/openai"
	"github.com/tanoret/validation-databse/core"
	"github.com/tanoret/validation-databse/reindex"
	"github.com/tanoret/validation-databse/search"
	"github.com/tanoret/validation-databse/storage"
	"github.com/tanoret/validation-databse/storage/badger"
)

// DefaultDBPath is where the database JSON lives unless DB_PATH overrides it.
const DefaultDBPath = "data/validation_db.json"

// DefaultCachePath is where the embedding cache lives on disk.
const DefaultCachePath = ".cache/embeddings"

// DBPathFromEnv resolves the database path from DB_PATH or the default.
func DBPathFromEnv() string {
	if p := strings.TrimSpace(os.Getenv("DB_PATH")); p != "" {
		return p
	}
	return DefaultDBPath
}

// Database bundles the loaded validation database with its embedding cache
// and optional embedding provider, and constructs searchers and reindexers
// over them. The host owns exactly one Database per backing file; queries
// never re-read the source.
type Database struct {
	data     *core.Database
	cache    storage.EmbeddingCache
	embedder ai.Embedder
	logger   *slog.Logger
}

// DatabaseOption configures an Open call.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig      *ai.Config
	embedder      ai.Embedder
	cachePath     string
	inMemoryCache bool
}

// WithAIConfig enables semantic search with the given provider config.
// Passing nil leaves semantic mode disabled.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbedder supplies a ready-made embedder, bypassing provider
// construction. Used by hosts with their own provider wiring and by tests.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithCachePath overrides the on-disk embedding cache location.
func WithCachePath(path string) DatabaseOption {
	return func(o *databaseOptions) {
		o.cachePath = path
	}
}

// WithInMemoryCache keeps the embedding cache off disk. Embeddings are then
// recomputed every process start, so this suits tests and one-shot runs.
func WithInMemoryCache() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemoryCache = true
	}
}

// Open loads the validation database from filePath and wires the embedding
// cache and provider around it. Schema violations and duplicate ids fail
// with core.ErrMalformedDatabase; an absent provider config is not an error,
// it just disables semantic search.
func Open(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		cachePath: DefaultCachePath,
	}
	for _, opt := range opts {
		opt(options)
	}

	data, err := LoadFile(filePath)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(options.cachePath, options.inMemoryCache)
	if err != nil {
		return nil, err
	}

	cache, err := badger.NewEmbeddingCache(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil && options.aiConfig != nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			cache.Close()
			return nil, err
		}
	}

	return &Database{
		data:     data,
		cache:    cache,
		embedder: embedder,
		logger:   slog.Default(),
	}, nil
}

// Close releases the embedding cache.
func (db *Database) Close() error {
	if err := db.cache.Close(); err != nil {
		db.logger.Error("error closing embedding cache", "err", err)
		return err
	}
	return nil
}

// Data returns the loaded validation database.
func (db *Database) Data() *core.Database {
	return db.data
}

// Semantic reports whether an embedding provider is configured.
func (db *Database) Semantic() bool {
	return db.embedder != nil
}

// NewSearcher builds a searcher over this database. When an embedding
// provider is configured, a semantic scorer is attached; otherwise the
// searcher ranks lexically.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	if db.embedder != nil {
		scorer, err := search.NewSemanticScorer(db.data, db.cache, db.embedder)
		if err != nil {
			return nil, err
		}
		opts = append([]search.Option{search.WithSemanticScorer(scorer)}, opts...)
	}
	return search.NewSearcher(db.data, opts...)
}

// NewReindexer builds a cache rebuilder over this database. Requires a
// configured embedding provider.
func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(db.data, db.cache, db.embedder, config, progress)
}

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


package ai

import (
	"errors"
	"os"
	"strings"
)

// Default model and batch size for OpenAI-compatible embedding services.
const (
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultBatchSize      = 64
)

// Config holds configuration for the embedding provider.
type Config struct {
	// Host is the base URL for the embedding service API. Empty means the
	// provider's default endpoint.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// Model is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma"
	Model string

	// APIKey is the credential sent to the embedding service. Local
	// OpenAI-compatible services usually accept any non-empty token.
	APIKey string

	// BatchSize caps how many documents are sent per embedding request.
	BatchSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the embedding service credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBatchSize sets the per-request document cap.
func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// NewConfig creates a Config with defaults and applies the provided options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithAPIKey(key),
//	    ai.WithModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := &Config{
		Model:     DefaultEmbeddingModel,
		BatchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ConfigFromEnv builds a Config from OPENAI_API_KEY, OPENAI_EMBEDDING_MODEL,
// and OPENAI_BASE_URL. Returns nil when no API key is set: an absent
// credential disables semantic mode, it is not an error.
func ConfigFromEnv() *Config {
	key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if key == "" {
		return nil
	}
	opts := []ConfigOption{WithAPIKey(key)}
	if model := strings.TrimSpace(os.Getenv("OPENAI_EMBEDDING_MODEL")); model != "" {
		opts = append(opts, WithModel(model))
	}
	if host := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); host != "" {
		opts = append(opts, WithHost(host))
	}
	return NewConfig(opts...)
}

// Normalize ensures the configuration is in a canonical form. A non-empty
// host gets the /v1 suffix required by most OpenAI-compatible APIs (Ollama,
// LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.APIKey == "" && c.Host == "" {
		return errors.New("ai config: APIKey is required unless a local Host is set")
	}
	return nil
}

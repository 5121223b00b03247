package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultEmbeddingModel, cfg.Model)
		assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
		assert.Empty(t, cfg.Host)
		assert.Empty(t, cfg.APIKey)
	})

	t.Run("options override defaults", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://localhost:11434"),
			WithModel("embeddinggemma"),
			WithAPIKey("sk-test"),
			WithBatchSize(16),
		)
		assert.Equal(t, "http://localhost:11434", cfg.Host)
		assert.Equal(t, "embeddinggemma", cfg.Model)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, 16, cfg.BatchSize)
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("strips trailing slash before adding v1", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("leaves v1 suffix alone", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/v1"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("empty host untouched", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Normalize()
		assert.Empty(t, cfg.Host)
	})

	t.Run("non-positive batch size restored to default", func(t *testing.T) {
		cfg := NewConfig(WithBatchSize(0))
		cfg.Normalize()
		assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("api key only is valid", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-test"))
		assert.NoError(t, cfg.Validate())
	})

	t.Run("local host without key is valid", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		assert.NoError(t, cfg.Validate())
	})

	t.Run("no key and no host fails", func(t *testing.T) {
		cfg := NewConfig()
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty model fails", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-test"), WithModel(""))
		assert.Error(t, cfg.Validate())
	})
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("no key disables semantic mode", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		assert.Nil(t, ConfigFromEnv())
	})

	t.Run("whitespace key disables semantic mode", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "   ")
		assert.Nil(t, ConfigFromEnv())
	})

	t.Run("key present yields defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("OPENAI_EMBEDDING_MODEL", "")
		t.Setenv("OPENAI_BASE_URL", "")
		cfg := ConfigFromEnv()
		require.NotNil(t, cfg)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, DefaultEmbeddingModel, cfg.Model)
		assert.Empty(t, cfg.Host)
	})

	t.Run("model and base url overrides", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("OPENAI_EMBEDDING_MODEL", "embeddinggemma")
		t.Setenv("OPENAI_BASE_URL", "http://localhost:11434")
		cfg := ConfigFromEnv()
		require.NotNil(t, cfg)
		assert.Equal(t, "embeddinggemma", cfg.Model)
		assert.Equal(t, "http://localhost:11434", cfg.Host)
	})
}

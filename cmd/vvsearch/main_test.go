package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/tanoret/validation-databse/search"
)

func TestDatabaseFlags(t *testing.T) {
	flags := databaseFlags()

	t.Run("db flag has no default", func(t *testing.T) {
		var dbFlag *cli.StringFlag
		for _, flag := range flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "db" {
				dbFlag = f
				break
			}
		}
		require.NotNil(t, dbFlag)
		assert.Empty(t, dbFlag.Value)
		assert.False(t, dbFlag.Required)
	})

	t.Run("cache flag defaults to the standard location", func(t *testing.T) {
		var cacheFlag *cli.StringFlag
		for _, flag := range flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "cache" {
				cacheFlag = f
				break
			}
		}
		require.NotNil(t, cacheFlag)
		assert.Equal(t, ".cache/embeddings", cacheFlag.Value)
	})
}

func TestAIConfig(t *testing.T) {
	newContext := func(t *testing.T, args ...string) *cli.Context {
		t.Helper()
		var captured *cli.Context
		app := &cli.App{
			Flags: databaseFlags(),
			Action: func(c *cli.Context) error {
				captured = c
				return nil
			},
		}
		require.NoError(t, app.Run(append([]string{"vvsearch"}, args...)))
		require.NotNil(t, captured)
		return captured
	}

	t.Run("nil without credentials", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg, err := aiConfig(newContext(t))
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("env key enables semantic mode", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("OPENAI_EMBEDDING_MODEL", "")
		t.Setenv("OPENAI_BASE_URL", "")
		cfg, err := aiConfig(newContext(t))
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "text-embedding-3-small", cfg.Model)
	})

	t.Run("flags override environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		t.Setenv("OPENAI_EMBEDDING_MODEL", "env-model")
		cfg, err := aiConfig(newContext(t,
			"--api-key", "sk-flag",
			"--embedding-model", "flag-model",
		))
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "sk-flag", cfg.APIKey)
		assert.Equal(t, "flag-model", cfg.Model)
	})

	t.Run("host alone enables a local service", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg, err := aiConfig(newContext(t,
			"--embedding-host", "http://localhost:11434",
			"--embedding-model", "embeddinggemma",
		))
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})
}

func TestSearchCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "vvsearch",
		Commands: []*cli.Command{
			{
				Name:   "search",
				Action: searchCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"k"},
						Value:   search.DefaultTopK,
					},
				),
			},
		},
	}

	t.Run("top defaults to the standard result size", func(t *testing.T) {
		cmd := app.Commands[0]
		var topFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "top" {
				topFlag = f
				break
			}
		}
		require.NotNil(t, topFlag)
		assert.Equal(t, search.DefaultTopK, topFlag.Value)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		err := app.Run([]string{"vvsearch", "search"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query")
	})
}

func TestSearchFilters(t *testing.T) {
	newContext := func(t *testing.T, args ...string) *cli.Context {
		t.Helper()
		var captured *cli.Context
		app := &cli.App{
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "vv-type"},
				&cli.StringSliceFlag{Name: "scope"},
				&cli.StringSliceFlag{Name: "tool"},
				&cli.StringSliceFlag{Name: "tag"},
				&cli.StringSliceFlag{Name: "phenomenon"},
				&cli.StringFlag{Name: "system-contains"},
			},
			Action: func(c *cli.Context) error {
				captured = c
				return nil
			},
		}
		require.NoError(t, app.Run(append([]string{"vvsearch"}, args...)))
		require.NotNil(t, captured)
		return captured
	}

	t.Run("no flags yields no filter", func(t *testing.T) {
		assert.Nil(t, searchFilters(newContext(t)))
	})

	t.Run("flags populate the filter fields", func(t *testing.T) {
		f := searchFilters(newContext(t,
			"--vv-type", "validation",
			"--tool", "BISON", "--tool", "MOOSE",
			"--system-contains", "primary loop",
		))
		require.NotNil(t, f)
		assert.Equal(t, []string{"validation"}, f.VVTypes)
		assert.Equal(t, []string{"BISON", "MOOSE"}, f.Tools)
		assert.Equal(t, "primary loop", f.SystemContains)
	})
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	run := func(level string) error {
		app := &cli.App{
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
		args := []string{"vvsearch"}
		if level != "" {
			args = append(args, "--log-level", level)
		}
		return app.Run(args)
	}

	t.Run("accepts each level", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			assert.NoError(t, run(level), level)
		}
	})

	t.Run("accepts mixed case", func(t *testing.T) {
		assert.NoError(t, run("DEBUG"))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := run("verbose")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

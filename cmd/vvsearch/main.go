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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	validationdb "github.com/tanoret/validation-databse"
	"github.com/tanoret/validation-databse/ai"
	"github.com/tanoret/validation-databse/reindex"
	"github.com/tanoret/validation-databse/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "vvsearch",
		Usage: "Search and maintain a verification & validation case database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank validation cases against a free-text query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results to return",
						Value:   search.DefaultTopK,
					},
					&cli.BoolFlag{
						Name:  "lexical",
						Usage: "Force lexical ranking even when embeddings are configured",
					},
					&cli.StringSliceFlag{
						Name:  "report-dir",
						Usage: "Directory to probe when resolving report files",
					},
					&cli.StringSliceFlag{
						Name:  "vv-type",
						Usage: "Only rank cases with this V&V type (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "scope",
						Usage: "Only rank cases with this scope (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tool",
						Usage: "Only rank cases using this tool (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Only rank cases carrying this tag (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "phenomenon",
						Usage: "Only rank cases covering this phenomenon (repeatable)",
					},
					&cli.StringFlag{
						Name:  "system-contains",
						Usage: "Only rank cases whose system field contains this substring",
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the embedding cache for the database",
				Action: reindexCommand,
				Flags: append(databaseFlags(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Recompute embeddings even for up-to-date entries",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of cases to embed in each batch",
						Value: 64,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent embedding batches",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N cases",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "check",
				Usage:  "Validate the database and report dangling report references",
				Action: checkCommand,
				Flags:  databaseFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the validation database JSON file",
		},
		&cli.StringFlag{
			Name:  "cache",
			Usage: "Path to the embedding cache directory",
			Value: validationdb.DefaultCachePath,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (overrides OPENAI_BASE_URL)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name (overrides OPENAI_EMBEDDING_MODEL)",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "Embedding service credential (overrides OPENAI_API_KEY)",
		},
	}
}

func dbPath(c *cli.Context) string {
	if p := c.String("db"); p != "" {
		return p
	}
	return validationdb.DBPathFromEnv()
}

// aiConfig merges flags over the OPENAI_* environment. Returns nil when
// neither supplies a credential or host, which disables semantic mode.
func aiConfig(c *cli.Context) (*ai.Config, error) {
	cfg := ai.ConfigFromEnv()
	host := c.String("embedding-host")
	model := c.String("embedding-model")
	key := c.String("api-key")

	if cfg == nil {
		if key == "" && host == "" {
			return nil, nil
		}
		cfg = ai.NewConfig()
	}
	if host != "" {
		cfg.Host = host
	}
	if model != "" {
		cfg.Model = model
	}
	if key != "" {
		cfg.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}
	return cfg, nil
}

func openDatabase(c *cli.Context, cfg *ai.Config) (*validationdb.Database, error) {
	opts := []validationdb.DatabaseOption{
		validationdb.WithCachePath(c.String("cache")),
	}
	if cfg != nil {
		opts = append(opts, validationdb.WithAIConfig(cfg))
	}
	return validationdb.Open(dbPath(c), opts...)
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	if c.Bool("lexical") {
		cfg = nil
	}

	db, err := openDatabase(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.SearchFiltered(ctx, query, c.Int("top"), searchFilters(c))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("%d hits (%s)\n", len(results.Hits), results.Mode)
	reportDirs := c.StringSlice("report-dir")
	for _, hit := range results.Hits {
		fmt.Printf("%2d. [%0.4f] %s: %s\n", hit.Rank, hit.Score, hit.Case.Id, hit.Case.Title)
		if len(hit.Case.Tools) > 0 {
			fmt.Printf("    tools: %s\n", strings.Join(hit.Case.Tools, ", "))
		}
		for _, cit := range hit.Citations {
			line := fmt.Sprintf("    -> %s", cit.Title)
			if cit.Locator != "" {
				line += fmt.Sprintf(" (%s)", cit.Locator)
			}
			if cit.Dangling {
				line += " [missing report " + cit.ReportID + "]"
				if cit.Link != "" {
					line += " " + cit.Link
				}
			} else if report, err := db.Data().GetReport(cit.ReportID); err == nil {
				if path, ok := search.ResolveReportFile(report, reportDirs...); ok {
					line += " " + path
				} else if cit.Link != "" {
					line += " " + cit.Link
				}
			}
			fmt.Println(line)
		}
	}
	return nil
}

// searchFilters builds the candidate filter from the search command's
// flags, or nil when none are set.
func searchFilters(c *cli.Context) *search.Filters {
	f := &search.Filters{
		VVTypes:        c.StringSlice("vv-type"),
		Scopes:         c.StringSlice("scope"),
		Tools:          c.StringSlice("tool"),
		Tags:           c.StringSlice("tag"),
		Phenomena:      c.StringSlice("phenomenon"),
		SystemContains: c.String("system-contains"),
	}
	if len(f.VVTypes) == 0 && len(f.Scopes) == 0 && len(f.Tools) == 0 &&
		len(f.Tags) == 0 && len(f.Phenomena) == 0 && f.SystemContains == "" {
		return nil
	}
	return f
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("reindexing requires an embedding configuration (set OPENAI_API_KEY or pass --embedding-host)")
	}

	db, err := openDatabase(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		Workers:        c.Int("workers"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := db.NewReindexer(reindexConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath(c))
	fmt.Fprintf(os.Stderr, "Cache: %s\n", c.String("cache"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Model)
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx, c.Bool("force")); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

func checkCommand(c *cli.Context) error {
	db, err := validationdb.LoadFile(dbPath(c))
	if err != nil {
		return err
	}

	resolver, err := search.NewResolver(db)
	if err != nil {
		return err
	}

	dangling := 0
	for _, id := range db.CaseIds() {
		cs, err := db.GetCase(id)
		if err != nil {
			return err
		}
		for _, cit := range resolver.Resolve(cs) {
			if cit.Dangling {
				dangling++
				fmt.Printf("%s: missing report %s\n", id, cit.ReportID)
			}
		}
	}

	fmt.Printf("%d cases, %d dangling report references\n", db.Len(), dangling)
	if dangling > 0 {
		return fmt.Errorf("database has %d dangling report references", dangling)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// Copyright 2025 Jotted Labs
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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/jotted/jotted"
	"github.com/jotted/jotted/ai"
	"github.com/jotted/jotted/reindex"
	"github.com/jotted/jotted/server"
)

func main() {
	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	app := &cli.App{
		Name:  "jotted",
		Usage: "Note store with lexical and semantic search",
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
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address",
						Value:   ":8080",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search notes by keyword relevance",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "pattern",
						Usage: "Treat the query as a regular expression",
					},
				),
			},
			{
				Name:      "semantic",
				Usage:     "Search notes by embedding similarity",
				ArgsUsage: "QUERY",
				Action:    semanticCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score",
						Value: 0,
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Show note and vector index statistics",
				Action: statsCommand,
				Flags:  databaseFlags(),
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild embeddings and the vector index from stored notes",
				Action: reindexCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N notes",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed notes",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
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
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the note database directory",
			EnvVars:  []string{"JOTTED_DB"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "chroma-url",
			Usage:   "ChromaDB server URL for semantic search",
			EnvVars: []string{"JOTTED_CHROMA_URL"},
		},
		&cli.StringFlag{
			Name:    "chroma-collection",
			Usage:   "ChromaDB collection name",
			EnvVars: []string{"JOTTED_CHROMA_COLLECTION"},
			Value:   "jotted-notes",
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "OpenAI-compatible embedding service URL",
			EnvVars: []string{"JOTTED_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"JOTTED_EMBEDDING_MODEL"},
			Value:   "text-embedding-3-small",
		},
		&cli.BoolFlag{
			Name:  "no-embedding",
			Usage: "Disable embedding and vector mirroring",
		},
	}
}

func openDatabase(c *cli.Context) (*jotted.Database, error) {
	opts := []jotted.DatabaseOption{
		jotted.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)),
	}
	if c.Bool("no-embedding") {
		opts = append(opts, jotted.WithEmbeddingDisabled())
	}
	if url := c.String("chroma-url"); url != "" {
		opts = append(opts, jotted.WithChroma(url, c.String("chroma-collection")))
	}
	return jotted.NewDatabase(c.String("db"), opts...)
}

func serveCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	srv, err := server.NewServer(db.Notes())
	if err != nil {
		return err
	}

	return srv.Run(c.String("addr"))
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	search := db.Notes().SearchNotes
	if c.Bool("pattern") {
		search = db.Notes().SearchNotesPattern
	}

	results, err := search(ctx, query, c.Int("limit"), 0)
	if err != nil {
		return err
	}

	return printJSON(results)
}

func semanticCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	results, err := db.Notes().SearchNotesSemantic(context.Background(), query, c.Int("limit"), c.Float64("threshold"))
	if err != nil {
		return err
	}

	return printJSON(results)
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	stats, err := db.Notes().GetStats(context.Background())
	if err != nil {
		return err
	}

	return printJSON(stats)
}

func reindexCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	embedder := db.Embedder()
	if embedder == nil {
		return fmt.Errorf("reindexing requires embedding; drop --no-embedding")
	}

	config := &reindex.Config{
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	r := reindex.NewReindexer(db.NoteRepository(), embedder, db.VectorIndex(), config, os.Stderr)
	_, err = r.Run(context.Background())
	return err
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

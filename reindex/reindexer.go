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


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jotted/jotted/ai"
	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/storage"
	"github.com/jotted/jotted/vectorindex"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// ReportInterval is how often to report progress (number of notes)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed notes
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer rebuilds embeddings and the vector index for every stored note.
type Reindexer struct {
	repo     storage.NoteRepository
	embedder ai.Embedder
	index    *vectorindex.Manager
	config   *Config
	progress io.Writer
}

// NewReindexer creates a reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(repo storage.NoteRepository, embedder ai.Embedder, index *vectorindex.Manager, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}
	if index == nil {
		index = vectorindex.NewManager(nil)
	}

	return &Reindexer{
		repo:     repo,
		embedder: embedder,
		index:    index,
		config:   config,
		progress: progress,
	}
}

// Run re-embeds every note and mirrors it into the vector index. Notes
// that still fail after retries are skipped and counted; the walk
// continues. Returns the number of notes reindexed.
func (r *Reindexer) Run(ctx context.Context) (int, error) {
	notes, err := r.repo.ListNotes(ctx, storage.ListOptions{
		SortBy:    storage.SortByCreatedAt,
		SortOrder: storage.SortAsc,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list notes: %w", err)
	}

	if len(notes) == 0 {
		fmt.Fprintf(r.progress, "No notes found in database (0 notes)\n")
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d notes\n", len(notes))

	tracker := NewProgressTracker(r.progress, len(notes), r.config.ReportInterval)
	tracker.Start()

	succeeded := 0
	failed := 0
	for _, note := range notes {
		err := RetryWithBackoff(ctx, func() error {
			return r.reindexNote(ctx, note)
		}, r.config.MaxRetries, r.config.RetryDelay)
		if err != nil {
			if ctx.Err() != nil {
				return succeeded, ctx.Err()
			}
			fmt.Fprintf(r.progress, "\nSkipping note %s: %v\n", note.ID, err)
			failed++
		} else {
			succeeded++
		}
		tracker.Increment(1)
	}

	tracker.Finish()
	fmt.Fprintf(r.progress, "Reindexed %d notes in %s (%d failed)\n",
		succeeded, tracker.Elapsed().Round(time.Millisecond), failed)

	return succeeded, nil
}

func (r *Reindexer) reindexNote(ctx context.Context, note *core.Note) error {
	embedding, err := r.embedder.EmbedText(ctx, note.Body)
	if err != nil {
		return fmt.Errorf("embedding note: %w", err)
	}

	if err := r.repo.SetEmbedding(ctx, note.ID, embedding); err != nil {
		return fmt.Errorf("storing embedding: %w", err)
	}

	idx, err := r.index.Acquire()
	if err != nil {
		// No index to mirror into; the stored embedding is still refreshed.
		return nil
	}

	payload := vectorindex.Payload{
		Title:     note.Title,
		Body:      core.TruncateBody(note.Body, core.PayloadBodyLen),
		CreatedAt: note.CreatedAt,
	}
	if err := idx.Upsert(ctx, note.ID, embedding, payload); err != nil {
		return fmt.Errorf("mirroring note: %w", err)
	}
	return nil
}

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


package jotted

import (
	"context"
	"log/slog"

	"github.com/jotted/jotted/ai"
	"github.com/jotted/jotted/ai/openai"
	"github.com/jotted/jotted/notes"
	"github.com/jotted/jotted/storage"
	"github.com/jotted/jotted/storage/badger"
	"github.com/jotted/jotted/vectorindex"
	"github.com/jotted/jotted/vectorindex/chroma"
)

// Database wires together the note store, the embedding provider, and the
// vector index.
type Database struct {
	backend  *badger.Backend
	noteRepo storage.NoteRepository
	service  *notes.Service
	embedder ai.Embedder
	index    *vectorindex.Manager
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig          *ai.Config
	embeddingDisabled bool
	inMemory          bool
	index             vectorindex.Index
	chromaURL         string
	chromaCollection  string
	serviceOpts       []notes.Option
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbeddingDisabled turns off embedding and vector mirroring entirely.
// Semantic search reports unavailable.
func WithEmbeddingDisabled() DatabaseOption {
	return func(o *databaseOptions) {
		o.embeddingDisabled = true
	}
}

// WithInMemory uses an in-memory store instead of the filesystem.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithChroma mirrors embeddings into a ChromaDB collection at the given
// server URL.
func WithChroma(url, collection string) DatabaseOption {
	return func(o *databaseOptions) {
		o.chromaURL = url
		o.chromaCollection = collection
	}
}

// WithVectorIndex mirrors embeddings into a pre-built index. Takes
// precedence over WithChroma.
func WithVectorIndex(index vectorindex.Index) DatabaseOption {
	return func(o *databaseOptions) {
		o.index = index
	}
}

// WithServiceOptions passes options through to the notes service.
func WithServiceOptions(opts ...notes.Option) DatabaseOption {
	return func(o *databaseOptions) {
		o.serviceOpts = append(o.serviceOpts, opts...)
	}
}

// NewDatabase opens the note store at filePath and wires the embedding
// provider and vector index around it. An unreachable vector index or
// embedding host does not fail the open; those paths degrade instead.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default()

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	noteRepo, err := badger.NewNoteRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var embedder ai.Embedder
	if !options.embeddingDisabled {
		var remote ai.Embedder
		if options.aiConfig.Remote() {
			remote, err = openai.NewEmbedder(options.aiConfig)
			if err != nil {
				logger.Warn("remote embedder unavailable, using synthetic embeddings", "error", err)
				remote = nil
			}
		}

		embedder, err = ai.NewFallbackEmbedder(remote, options.aiConfig)
		if err != nil {
			noteRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	index := options.index
	if index == nil && options.chromaURL != "" {
		index, err = chroma.NewIndex(context.Background(), options.chromaURL, options.chromaCollection)
		if err != nil {
			logger.Warn("vector index unreachable, semantic search disabled", "error", err)
			index = nil
		}
	}
	manager := vectorindex.NewManager(index)
	manager.Initialize(context.Background())

	service, err := notes.NewService(noteRepo, embedder, manager, options.serviceOpts...)
	if err != nil {
		manager.Close()
		noteRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		noteRepo: noteRepo,
		service:  service,
		embedder: embedder,
		index:    manager,
		logger:   logger,
	}, nil
}

func (db *Database) Close() error {
	db.service.Release()

	if err := db.index.Close(); err != nil {
		db.logger.Error("error closing vector index", "err", err)
	}
	if err := db.noteRepo.Close(); err != nil {
		db.logger.Error("error closing note repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Notes returns the note orchestrator.
func (db *Database) Notes() *notes.Service {
	return db.service
}

// NoteRepository returns the underlying note store.
func (db *Database) NoteRepository() storage.NoteRepository {
	return db.noteRepo
}

// VectorIndex returns the vector index manager.
func (db *Database) VectorIndex() *vectorindex.Manager {
	return db.index
}

// Embedder returns the configured embedder, or nil when embedding is
// disabled.
func (db *Database) Embedder() ai.Embedder {
	return db.embedder
}

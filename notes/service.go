package notes

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/jotted/jotted/ai"
	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/search"
	"github.com/jotted/jotted/storage"
	"github.com/jotted/jotted/vectorindex"
)

// DefaultCallTimeout bounds each outbound call to the embedding provider
// or the vector index.
const DefaultCallTimeout = 10 * time.Second

// Stats summarizes the note collection and the vector index contents.
type Stats struct {
	TotalNotes    int64             `json:"totalNotes"`
	NotesLastWeek int64             `json:"notesLastWeek"`
	VectorIndex   vectorindex.Stats `json:"vectorIndex"`
}

// Service orchestrates notes across storage, embeddings, and the vector
// index.
type Service struct {
	repository storage.NoteRepository
	embedder   ai.Embedder // nil when no provider is configured
	index      *vectorindex.Manager
	lexical    *search.Lexical
	semantic   *search.Semantic
	mirrorPool *ants.Pool
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCallTimeout bounds each embedding and index call.
func WithCallTimeout(timeout time.Duration) Option {
	return func(s *Service) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive", core.ErrInvalidInput)
		}
		s.timeout = timeout
		return nil
	}
}

// WithMirrorPoolSize sets the worker pool size for background mirroring.
func WithMirrorPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			return fmt.Errorf("%w: pool size must be at least 1", core.ErrInvalidInput)
		}
		if s.mirrorPool != nil {
			s.mirrorPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.mirrorPool = pool
		return nil
	}
}

// NewService creates the orchestrator. A nil embedder disables embedding
// and mirroring entirely; a nil index manager behaves as unconfigured.
func NewService(repository storage.NoteRepository, embedder ai.Embedder, index *vectorindex.Manager, opts ...Option) (*Service, error) {
	if repository == nil {
		return nil, search.ErrRepositoryRequired
	}
	if index == nil {
		index = vectorindex.NewManager(nil)
	}

	s := &Service{
		repository: repository,
		embedder:   embedder,
		index:      index,
		timeout:    DefaultCallTimeout,
		logger:     slog.Default().With("component", "notes"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			if s.mirrorPool != nil {
				s.mirrorPool.Release()
			}
			return nil, err
		}
	}

	if s.mirrorPool == nil {
		size := runtime.NumCPU() / 2
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return nil, err
		}
		s.mirrorPool = pool
	}

	lexical, err := search.NewLexical(repository, search.WithLexicalLogger(s.logger))
	if err != nil {
		s.mirrorPool.Release()
		return nil, err
	}
	s.lexical = lexical

	if embedder != nil {
		semantic, err := search.NewSemantic(index, embedder, search.WithSemanticLogger(s.logger))
		if err != nil {
			s.mirrorPool.Release()
			return nil, err
		}
		s.semantic = semantic
	}

	return s, nil
}

// Release stops the background mirror pool. Pending mirror tasks are
// dropped; the vector index is a rebuildable cache.
func (s *Service) Release() {
	if s.mirrorPool != nil {
		s.mirrorPool.Release()
	}
}

// CreateNote validates, stores, embeds, and mirrors a new note.
// The note is durable once this returns; mirroring continues in the
// background.
func (s *Service) CreateNote(ctx context.Context, title, body string, tags []string) (*core.Note, error) {
	title, err := core.ValidateTitle(title)
	if err != nil {
		return nil, err
	}
	body, err = core.ValidateBody(body)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &core.Note{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		Tags:      core.NormalizeTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.embedder != nil {
		embedding, err := s.embedText(ctx, note.Body)
		if err != nil {
			s.logger.Warn("embedding new note failed", "error", err)
		} else {
			note.Embedding = embedding
		}
	}

	if err := s.repository.AddNote(ctx, note); err != nil {
		return nil, err
	}

	if note.Embedding != nil {
		s.mirrorUpsert(note)
	}

	return note, nil
}

// GetNote returns a note by id, or nil when the id is malformed or
// unknown.
func (s *Service) GetNote(ctx context.Context, id string) (*core.Note, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	return s.repository.GetNote(ctx, id)
}

// ListNotes returns notes with sorting, pagination, and an optional tag
// filter.
func (s *Service) ListNotes(ctx context.Context, opts storage.ListOptions) ([]*core.Note, error) {
	return s.repository.ListNotes(ctx, opts)
}

// UpdateNote applies a partial update. Content changes trigger a
// background re-embed and re-mirror. Returns nil when the id is malformed
// or unknown.
func (s *Service) UpdateNote(ctx context.Context, id string, update *core.NoteUpdate) (*core.Note, error) {
	if update == nil || update.Empty() {
		return nil, fmt.Errorf("%w: empty update", core.ErrInvalidInput)
	}
	if err := core.ValidateUpdate(update); err != nil {
		return nil, err
	}
	if uuid.Validate(id) != nil {
		return nil, nil
	}

	note, err := s.repository.UpdateNote(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil
	}

	if update.ChangesContent() {
		s.reembedAndMirror(note)
	}

	return note, nil
}

// DeleteNote removes a note and schedules its vector for removal.
// Returns false when the id is malformed or unknown.
func (s *Service) DeleteNote(ctx context.Context, id string) (bool, error) {
	if uuid.Validate(id) != nil {
		return false, nil
	}

	deleted, err := s.repository.DeleteNote(ctx, id)
	if err != nil {
		return false, err
	}

	if deleted {
		s.mirrorDelete(id)
	}

	return deleted, nil
}

// SearchNotes runs the lexical strategy.
func (s *Service) SearchNotes(ctx context.Context, query string, limit, skip int) ([]*core.SearchResult, error) {
	return s.lexical.Search(ctx, query, limit, skip)
}

// SearchNotesPattern matches notes directly against a pattern.
func (s *Service) SearchNotesPattern(ctx context.Context, pattern string, limit, skip int) ([]*core.SearchResult, error) {
	return s.lexical.SearchPattern(ctx, pattern, limit, skip)
}

// SearchNotesSemantic runs the semantic strategy. Fails with
// ErrServiceUnavailable when no embedder is configured or the vector index
// is unavailable.
func (s *Service) SearchNotesSemantic(ctx context.Context, query string, limit int, threshold float64) ([]*core.SearchResult, error) {
	if s.semantic == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", core.ErrServiceUnavailable)
	}
	return s.semantic.Search(ctx, query, limit, threshold)
}

// GetStats reports note counts and vector index contents. The trailing
// week is the last 7*24 hours, inclusive of the boundary.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	total, err := s.repository.CountNotes(ctx)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().Add(-7 * 24 * time.Hour)
	lastWeek, err := s.repository.CountNotesCreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalNotes:    total,
		NotesLastWeek: lastWeek,
		VectorIndex:   s.index.Stats(ctx),
	}, nil
}

func (s *Service) embedText(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.embedder.EmbedText(ctx, text)
}

func (s *Service) mirrorUpsert(note *core.Note) {
	payload := vectorindex.Payload{
		Title:     note.Title,
		Body:      core.TruncateBody(note.Body, core.PayloadBodyLen),
		CreatedAt: note.CreatedAt,
	}
	embedding := note.Embedding
	id := note.ID

	if err := s.mirrorPool.Submit(func() {
		idx, err := s.index.Acquire()
		if err != nil {
			s.logger.Debug("skipping vector mirror", "id", id, "reason", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := idx.Upsert(ctx, id, embedding, payload); err != nil {
			s.logger.Error("error mirroring note to vector index", "id", id, "err", err)
		}
	}); err != nil {
		s.logger.Error("error submitting mirror task", "id", id, "err", err)
	}
}

// reembedAndMirror recomputes the embedding for a changed note off the
// request path and re-mirrors it. The stored embedding is derived data, so
// a stale read between the update and this task settling is acceptable.
func (s *Service) reembedAndMirror(note *core.Note) {
	if s.embedder == nil {
		return
	}

	id := note.ID
	body := note.Body
	payload := vectorindex.Payload{
		Title:     note.Title,
		Body:      core.TruncateBody(note.Body, core.PayloadBodyLen),
		CreatedAt: note.CreatedAt,
	}

	if err := s.mirrorPool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		embedding, err := s.embedder.EmbedText(ctx, body)
		if err != nil {
			s.logger.Error("error re-embedding note", "id", id, "err", err)
			return
		}

		if err := s.repository.SetEmbedding(ctx, id, embedding); err != nil {
			s.logger.Error("error storing embedding", "id", id, "err", err)
			return
		}

		idx, err := s.index.Acquire()
		if err != nil {
			s.logger.Debug("skipping vector mirror", "id", id, "reason", err)
			return
		}
		if err := idx.Upsert(ctx, id, embedding, payload); err != nil {
			s.logger.Error("error mirroring note to vector index", "id", id, "err", err)
		}
	}); err != nil {
		s.logger.Error("error submitting re-embed task", "id", id, "err", err)
	}
}

func (s *Service) mirrorDelete(id string) {
	if err := s.mirrorPool.Submit(func() {
		idx, err := s.index.Acquire()
		if err != nil {
			s.logger.Debug("skipping vector delete", "id", id, "reason", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := idx.Delete(ctx, id); err != nil {
			s.logger.Error("error deleting note from vector index", "id", id, "err", err)
		}
	}); err != nil {
		s.logger.Error("error submitting delete task", "id", id, "err", err)
	}
}

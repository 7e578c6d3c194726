package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/storage"
)

// Lexical searches notes by keyword relevance with a pattern-scan fallback.
type Lexical struct {
	repository storage.NoteRepository
	logger     *slog.Logger
}

// LexicalOption configures a Lexical searcher.
type LexicalOption func(*Lexical) error

// WithLexicalLogger sets a custom logger.
// Default is slog.Default().
func WithLexicalLogger(logger *slog.Logger) LexicalOption {
	return func(s *Lexical) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewLexical creates a lexical searcher over the note repository.
func NewLexical(repository storage.NoteRepository, opts ...LexicalOption) (*Lexical, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Lexical{
		repository: repository,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs the weighted full-text query and returns up to limit results
// ordered by descending relevance. When the text index cannot serve the
// query the search degrades to a pattern scan over the primary store,
// ordered by creation time instead of relevance.
func (s *Lexical) Search(ctx context.Context, query string, limit, skip int) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, limit, skip, nil)
}

// SearchWithMonitor is Search with observation hooks.
func (s *Lexical) SearchWithMonitor(ctx context.Context, query string, limit, skip int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query = strings.TrimSpace(query)
	monitor.Start(query)
	if query == "" {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	scored, err := s.repository.SearchText(ctx, query, limit, skip)
	if err != nil {
		if !errors.Is(err, storage.ErrTextIndex) {
			return nil, err
		}
		s.logger.Warn("text index unavailable, falling back to pattern scan", "query", query, "error", err)
		monitor.TextIndexFallback(err)
		return s.patternScan(ctx, query, limit, skip, monitor)
	}

	results := make([]*core.SearchResult, 0, len(scored))
	ids := make([]string, 0, len(scored))
	for _, sn := range scored {
		results = append(results, core.ResultFromNote(sn.Note, sn.Score))
		ids = append(ids, sn.Note.ID)
	}
	monitor.AfterTextSearch(ids)
	monitor.Finish(results)
	return results, nil
}

// SearchPattern matches notes against the pattern directly, bypassing the
// text index. The pattern is interpreted as a case-insensitive regular
// expression, falling back to a literal substring match when it doesn't
// compile.
func (s *Lexical) SearchPattern(ctx context.Context, pattern string, limit, skip int) ([]*core.SearchResult, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return []*core.SearchResult{}, nil
	}
	return s.patternScan(ctx, pattern, limit, skip, &noopMonitor{})
}

func (s *Lexical) patternScan(ctx context.Context, pattern string, limit, skip int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	notes, err := s.repository.FindByPattern(ctx, pattern, limit, skip)
	if err != nil {
		return nil, err
	}

	// Pattern matches carry no relevance signal; ordering by creation
	// time stands in for it.
	results := make([]*core.SearchResult, 0, len(notes))
	ids := make([]string, 0, len(notes))
	for _, note := range notes {
		results = append(results, core.ResultFromNote(note, 0))
		ids = append(ids, note.ID)
	}
	monitor.AfterPatternScan(ids)
	monitor.Finish(results)
	return results, nil
}

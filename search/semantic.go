package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jotted/jotted/ai"
	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/vectorindex"
)

// DefaultSimilarityThreshold filters out hits that are barely related to
// the query.
const DefaultSimilarityThreshold = 0.0

// Semantic searches notes by embedding similarity against the external
// vector index.
type Semantic struct {
	manager  *vectorindex.Manager
	embedder ai.Embedder
	logger   *slog.Logger
}

// SemanticOption configures a Semantic searcher.
type SemanticOption func(*Semantic) error

// WithSemanticLogger sets a custom logger.
// Default is slog.Default().
func WithSemanticLogger(logger *slog.Logger) SemanticOption {
	return func(s *Semantic) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSemantic creates a semantic searcher.
func NewSemantic(manager *vectorindex.Manager, embedder ai.Embedder, opts ...SemanticOption) (*Semantic, error) {
	if manager == nil {
		return nil, ErrIndexManagerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Semantic{
		manager:  manager,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search embeds the query and returns up to limit results ordered by
// descending similarity, dropping hits below threshold. When the vector
// index is unavailable the search fails with ErrServiceUnavailable rather
// than degrading to lexical results.
func (s *Semantic) Search(ctx context.Context, query string, limit int, threshold float64) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, limit, threshold, nil)
}

// SearchWithMonitor is Search with observation hooks.
func (s *Semantic) SearchWithMonitor(ctx context.Context, query string, limit int, threshold float64, monitor SearchMonitor) ([]*core.SearchResult, error) {
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

	idx, err := s.manager.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrServiceUnavailable, err)
	}

	// Probe before embedding so an unreachable index fails fast.
	if err := idx.Ping(ctx); err != nil {
		s.logger.Warn("vector index probe failed", "error", err)
		return nil, fmt.Errorf("%w: vector index unreachable: %v", core.ErrServiceUnavailable, err)
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "error", err)
		return nil, fmt.Errorf("%w: embedding query: %v", core.ErrIndexing, err)
	}
	monitor.AfterQueryEmbedding(len(embedding))

	hits, err := idx.Search(ctx, embedding, limit, threshold)
	if err != nil {
		s.logger.Error("error querying vector index", "error", err)
		return nil, fmt.Errorf("%w: %v", core.ErrServiceUnavailable, err)
	}

	results := make([]*core.SearchResult, 0, len(hits))
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		results = append(results, &core.SearchResult{
			ID:        hit.ID,
			Title:     hit.Payload.Title,
			Body:      core.TruncateBody(hit.Payload.Body, core.ResultBodyLen),
			Score:     hit.Score,
			CreatedAt: hit.Payload.CreatedAt,
		})
		ids = append(ids, hit.ID)
	}
	monitor.AfterIndexSearch(ids)
	monitor.Finish(results)
	return results, nil
}

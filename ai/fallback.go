package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jotted/jotted/core"
)

// FallbackEmbedder prefers a remote embedding provider and degrades to the
// deterministic synthetic generator whenever the remote path fails: network
// or auth errors, timeouts, an open circuit breaker, or a response of the
// wrong shape. Callers never see a provider failure.
type FallbackEmbedder struct {
	remote    Embedder // nil when no remote provider is configured
	synthetic *SyntheticEmbedder
	cache     *Cache
	breaker   *gobreaker.CircuitBreaker
	timeout   time.Duration
	logger    *slog.Logger
}

var _ Embedder = (*FallbackEmbedder)(nil)

// FallbackOption configures a FallbackEmbedder.
type FallbackOption func(*FallbackEmbedder)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) FallbackOption {
	return func(f *FallbackEmbedder) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

// NewFallbackEmbedder creates an embedder that wraps remote (which may be
// nil) with the synthetic fallback. Remote calls run behind a circuit
// breaker so a dead provider stops being probed on every request.
func NewFallbackEmbedder(remote Embedder, config *Config, opts ...FallbackOption) (*FallbackEmbedder, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	f := &FallbackEmbedder{
		remote:    remote,
		synthetic: NewSyntheticEmbedder(),
		cache:     NewCache(config.CacheSize),
		timeout:   config.Timeout,
		logger:    slog.Default().With("component", "embedder"),
	}

	f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "embedding-provider",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			f.logger.Warn("embedding provider circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// EmbedText generates an embedding for the text, preferring the remote
// provider and recovering locally on any remote failure.
func (f *FallbackEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: text is empty", core.ErrInvalidInput)
	}

	if f.remote == nil {
		f.logger.Debug("no remote embedding provider configured, using synthetic generator")
		return f.synthetic.EmbedText(ctx, trimmed)
	}

	hash := ComputeHash(trimmed)
	if embedding, ok := f.cache.Get(hash); ok {
		return embedding, nil
	}

	embedding, err := f.embedRemote(ctx, trimmed)
	if err != nil {
		f.logger.Warn("embedding provider failed, using synthetic fallback",
			"reason", err, "length", len(trimmed))
		return f.synthetic.EmbedText(ctx, trimmed)
	}

	f.cache.Set(hash, embedding)
	return embedding, nil
}

// EmbedTexts generates embeddings for multiple texts. Fallback is decided
// per text, so a flaky provider degrades individual entries rather than the
// whole batch.
func (f *FallbackEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := f.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// embedRemote calls the remote provider behind the circuit breaker with an
// independent timeout, and validates the response shape before accepting it.
func (f *FallbackEmbedder) embedRemote(ctx context.Context, text string) ([]float32, error) {
	result, err := f.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		embedding, err := f.remote.EmbedText(callCtx, text)
		if err != nil {
			return nil, err
		}
		if len(embedding) != core.EmbeddingDim {
			return nil, fmt.Errorf("unexpected embedding shape: got %d elements, want %d",
				len(embedding), core.EmbeddingDim)
		}
		return embedding, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

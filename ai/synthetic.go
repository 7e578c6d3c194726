package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/vector"
)

// Linear congruential generator constants. Changing any of these changes
// every synthetic vector ever produced, so they are frozen.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgMask       = 1<<31 - 1
)

// SyntheticEmbedder generates deterministic embeddings locally, with no
// network dependency. The same text always yields the same unit-normalized
// vector of core.EmbeddingDim elements.
type SyntheticEmbedder struct{}

var _ Embedder = (*SyntheticEmbedder)(nil)

// NewSyntheticEmbedder creates a deterministic local embedder.
func NewSyntheticEmbedder() *SyntheticEmbedder {
	return &SyntheticEmbedder{}
}

// EmbedText generates a deterministic embedding for the text.
func (s *SyntheticEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: text is empty", core.ErrInvalidInput)
	}
	return syntheticVector(trimmed), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (s *SyntheticEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// syntheticVector derives a seed from the sum of the text's character codes,
// runs a fixed LCG from it to fill the vector with values in [-1, 1], and
// unit-normalizes the result.
func syntheticVector(text string) []float32 {
	var seed int64
	for _, r := range text {
		seed += int64(r)
	}
	seed &= lcgMask

	raw := make([]float32, core.EmbeddingDim)
	for i := range raw {
		seed = (seed*lcgMultiplier + lcgIncrement) & lcgMask
		raw[i] = float32(seed)/float32(lcgMask)*2 - 1
	}

	return vector.Normalize(raw)
}

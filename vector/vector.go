// Package vector provides the similarity math used by semantic retrieval:
// cosine similarity, unit normalization, and ranked top-K selection.
package vector

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch indicates two vectors of different lengths were
// compared. This is a programmer error, not a runtime condition to recover.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// CosineSimilarity computes dot(a,b) / (|a| * |b|), in [-1, 1].
// Inputs are not assumed to be unit-normalized.
// If either vector has zero norm the similarity is undefined; this
// implementation returns 0 for that case.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Normalize normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}

	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

// Scored pairs a candidate with its similarity score.
type Scored[T any] struct {
	Item  T
	Score float64
}

// RankBySimilarity scores every candidate against the query vector and
// returns up to k candidates ordered by descending score. Ties keep the
// candidates' original order. If fewer than k candidates exist, all are
// returned.
func RankBySimilarity[T any](query []float32, candidates []T, vec func(T) []float32, k int) ([]Scored[T], error) {
	if k <= 0 || len(candidates) == 0 {
		return nil, nil
	}

	scored := make([]Scored[T], len(candidates))
	for i, candidate := range candidates {
		score, err := CosineSimilarity(query, vec(candidate))
		if err != nil {
			return nil, err
		}
		scored[i] = Scored[T]{Item: candidate, Score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

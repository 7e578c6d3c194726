package vectorindex

import (
	"context"
	"time"
)

// Payload is the snapshot of a note stored alongside its vector so that
// search results can be served without touching primary storage. Body is
// truncated before mirroring.
type Payload struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Hit is a single search result from the index. Score is a cosine
// similarity in [-1, 1], higher is closer.
type Hit struct {
	ID      string
	Score   float64
	Payload Payload
}

// Stats describes the index contents.
type Stats struct {
	Vectors int64  `json:"vectors"`
	Status  string `json:"status"`
}

// Index is an external approximate nearest neighbor index keyed by note ID.
// Implementations must be safe for concurrent use.
type Index interface {
	// Upsert inserts or replaces the vector and payload for a note.
	Upsert(ctx context.Context, id string, vector []float32, payload Payload) error

	// Search returns up to limit hits ordered by descending similarity,
	// dropping hits scoring below threshold.
	Search(ctx context.Context, vector []float32, limit int, threshold float64) ([]Hit, error)

	// Delete removes a note's vector. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error

	// Ping verifies the index is reachable.
	Ping(ctx context.Context) error

	// Count returns the number of vectors in the index.
	Count(ctx context.Context) (int64, error)

	// Close releases the connection to the index.
	Close() error
}

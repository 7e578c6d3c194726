package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/jotted/jotted/vector"
	"github.com/jotted/jotted/vectorindex"
)

type entry struct {
	vector  []float32
	payload vectorindex.Payload
}

// MockIndex is an in-memory vectorindex.Index for testing. Error fields,
// when set, are returned by the corresponding operations.
type MockIndex struct {
	mu      sync.Mutex
	entries map[string]entry

	UpsertErr error
	SearchErr error
	DeleteErr error
	PingErr   error
	CountErr  error
}

var _ vectorindex.Index = (*MockIndex)(nil)

// NewMockIndex creates an empty in-memory index.
func NewMockIndex() *MockIndex {
	return &MockIndex{entries: make(map[string]entry)}
}

func (m *MockIndex) Upsert(ctx context.Context, id string, vec []float32, payload vectorindex.Payload) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = entry{vector: slices.Clone(vec), payload: payload}
	return nil
}

func (m *MockIndex) Search(ctx context.Context, vec []float32, limit int, threshold float64) ([]vectorindex.Hit, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	type candidate struct {
		id string
		entry
	}

	m.mu.Lock()
	candidates := make([]candidate, 0, len(m.entries))
	for id, e := range m.entries {
		candidates = append(candidates, candidate{id: id, entry: e})
	}
	m.mu.Unlock()

	ranked, err := vector.RankBySimilarity(vec, candidates,
		func(c candidate) []float32 { return c.vector }, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]vectorindex.Hit, 0, len(ranked))
	for _, r := range ranked {
		if r.Score < threshold {
			continue
		}
		hits = append(hits, vectorindex.Hit{ID: r.Item.id, Score: r.Score, Payload: r.Item.payload})
	}
	return hits, nil
}

func (m *MockIndex) Delete(ctx context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MockIndex) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockIndex) Count(ctx context.Context) (int64, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}

func (m *MockIndex) Close() error {
	return nil
}

// Has reports whether the index holds a vector for id.
func (m *MockIndex) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[id]
	return ok
}

// Payload returns the stored payload for id.
func (m *MockIndex) Payload(id string) (vectorindex.Payload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e.payload, ok
}

// Len returns the number of stored vectors.
func (m *MockIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

package vectorindex_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotted/jotted/vectorindex"
	"github.com/jotted/jotted/vectorindex/mock"
)

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("nil index stays unconfigured", func(t *testing.T) {
		m := vectorindex.NewManager(nil)
		assert.Equal(t, vectorindex.StatusUnconfigured, m.Status())

		m.Initialize(ctx)
		assert.Equal(t, vectorindex.StatusUnconfigured, m.Status())

		_, err := m.Acquire()
		assert.ErrorIs(t, err, vectorindex.ErrUnavailable)
	})

	t.Run("successful probe settles ready", func(t *testing.T) {
		idx := mock.NewMockIndex()
		m := vectorindex.NewManager(idx)
		assert.Equal(t, vectorindex.StatusInitializing, m.Status())

		m.Initialize(ctx)
		assert.Equal(t, vectorindex.StatusReady, m.Status())

		acquired, err := m.Acquire()
		require.NoError(t, err)
		assert.NotNil(t, acquired)
	})

	t.Run("failed probe is terminal", func(t *testing.T) {
		idx := mock.NewMockIndex()
		idx.PingErr = errors.New("connection refused")
		m := vectorindex.NewManager(idx)

		m.Initialize(ctx)
		assert.Equal(t, vectorindex.StatusFailed, m.Status())

		// A later healthy index doesn't revive a failed manager.
		idx.PingErr = nil
		m.Initialize(ctx)
		assert.Equal(t, vectorindex.StatusFailed, m.Status())

		_, err := m.Acquire()
		assert.ErrorIs(t, err, vectorindex.ErrUnavailable)
	})

	t.Run("before initialize nothing is acquirable", func(t *testing.T) {
		m := vectorindex.NewManager(mock.NewMockIndex())
		_, err := m.Acquire()
		assert.ErrorIs(t, err, vectorindex.ErrUnavailable)
	})
}

func TestManagerStats(t *testing.T) {
	ctx := context.Background()

	t.Run("ready index reports vector count", func(t *testing.T) {
		idx := mock.NewMockIndex()
		require.NoError(t, idx.Upsert(ctx, "a", []float32{1, 0}, vectorindex.Payload{Title: "a"}))
		require.NoError(t, idx.Upsert(ctx, "b", []float32{0, 1}, vectorindex.Payload{Title: "b"}))

		m := vectorindex.NewManager(idx)
		m.Initialize(ctx)

		stats := m.Stats(ctx)
		assert.Equal(t, int64(2), stats.Vectors)
		assert.Equal(t, string(vectorindex.StatusReady), stats.Status)
	})

	t.Run("unavailable index reports status only", func(t *testing.T) {
		m := vectorindex.NewManager(nil)
		stats := m.Stats(ctx)
		assert.Zero(t, stats.Vectors)
		assert.Equal(t, string(vectorindex.StatusUnconfigured), stats.Status)
	})
}

func TestMockIndexSearch(t *testing.T) {
	ctx := context.Background()
	idx := mock.NewMockIndex()

	require.NoError(t, idx.Upsert(ctx, "close", []float32{1, 0}, vectorindex.Payload{Title: "close"}))
	require.NoError(t, idx.Upsert(ctx, "near", []float32{0.9, 0.1}, vectorindex.Payload{Title: "near"}))
	require.NoError(t, idx.Upsert(ctx, "far", []float32{-1, 0}, vectorindex.Payload{Title: "far"}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "close", hits[0].ID)
	assert.Equal(t, "near", hits[1].ID)

	hits, err = idx.Search(ctx, []float32{1, 0}, 1, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "close", hits[0].ID)
}

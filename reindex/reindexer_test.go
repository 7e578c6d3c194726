package reindex

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotted/jotted/ai"
	"github.com/jotted/jotted/core"
	badgerstore "github.com/jotted/jotted/storage/badger"
	"github.com/jotted/jotted/vectorindex"
	"github.com/jotted/jotted/vectorindex/mock"
)

func TestReindexerRun(t *testing.T) {
	ctx := context.Background()

	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	now := time.Now().UTC()
	var ids []string
	for _, body := range []string{"first note", "second note", "third note"} {
		note := &core.Note{
			ID:        uuid.NewString(),
			Title:     "Note",
			Body:      body,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, repo.AddNote(ctx, note))
		ids = append(ids, note.ID)
	}

	idx := mock.NewMockIndex()
	manager := vectorindex.NewManager(idx)
	manager.Initialize(ctx)

	var out bytes.Buffer
	r := NewReindexer(repo, ai.NewSyntheticEmbedder(), manager, nil, &out)

	count, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, idx.Len())

	// Stored embeddings match the deterministic embedder output.
	note, err := repo.GetNote(ctx, ids[0])
	require.NoError(t, err)
	want, _ := ai.NewSyntheticEmbedder().EmbedText(ctx, note.Body)
	assert.Equal(t, want, note.Embedding)
}

func TestReindexerWithoutIndex(t *testing.T) {
	ctx := context.Background()

	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	now := time.Now().UTC()
	note := &core.Note{ID: uuid.NewString(), Title: "Solo", Body: "body", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.AddNote(ctx, note))

	var out bytes.Buffer
	r := NewReindexer(repo, ai.NewSyntheticEmbedder(), nil, nil, &out)

	count, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Len(t, got.Embedding, core.EmbeddingDim)
}

func TestReindexerEmptyDatabase(t *testing.T) {
	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	var out bytes.Buffer
	r := NewReindexer(repo, ai.NewSyntheticEmbedder(), nil, nil, &out)

	count, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Contains(t, out.String(), "No notes found")
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		terminal := errors.New("terminal")
		err := RetryWithBackoff(ctx, func() error { return terminal }, 2, time.Millisecond)
		assert.ErrorIs(t, err, terminal)
	})

	t.Run("rejects non-positive attempts", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(cancelled, func() error { return errors.New("nope") }, 3, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

package notes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotted/jotted/ai"
	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/storage"
	badgerstore "github.com/jotted/jotted/storage/badger"
	"github.com/jotted/jotted/vectorindex"
	"github.com/jotted/jotted/vectorindex/mock"
)

const mirrorWait = 5 * time.Second

func setupService(t *testing.T, embedder ai.Embedder, idx *mock.MockIndex) *Service {
	t.Helper()

	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	var manager *vectorindex.Manager
	if idx != nil {
		manager = vectorindex.NewManager(idx)
		manager.Initialize(context.Background())
	}

	svc, err := NewService(repo, embedder, manager)
	require.NoError(t, err)
	t.Cleanup(svc.Release)
	return svc
}

func TestCreateNote(t *testing.T) {
	ctx := context.Background()
	idx := mock.NewMockIndex()
	svc := setupService(t, ai.NewSyntheticEmbedder(), idx)

	t.Run("valid note gets id, timestamps, embedding", func(t *testing.T) {
		note, err := svc.CreateNote(ctx, "  Trimmed title  ", "some body", []string{"tag", "", "other"})
		require.NoError(t, err)
		require.NotNil(t, note)
		assert.NoError(t, uuid.Validate(note.ID))
		assert.Equal(t, "Trimmed title", note.Title)
		assert.Equal(t, []string{"tag", "other"}, note.Tags)
		assert.Equal(t, note.CreatedAt, note.UpdatedAt)
		assert.Len(t, note.Embedding, core.EmbeddingDim)

		require.Eventually(t, func() bool {
			return idx.Has(note.ID)
		}, mirrorWait, 10*time.Millisecond, "note should be mirrored to the vector index")

		payload, ok := idx.Payload(note.ID)
		require.True(t, ok)
		assert.Equal(t, "Trimmed title", payload.Title)
	})

	t.Run("validation failures", func(t *testing.T) {
		_, err := svc.CreateNote(ctx, "", "body", nil)
		assert.ErrorIs(t, err, core.ErrInvalidNote)

		_, err = svc.CreateNote(ctx, strings.Repeat("t", core.TitleMaxLen+1), "body", nil)
		assert.ErrorIs(t, err, core.ErrInvalidNote)

		_, err = svc.CreateNote(ctx, "title", "   ", nil)
		assert.ErrorIs(t, err, core.ErrInvalidNote)

		_, err = svc.CreateNote(ctx, "title", strings.Repeat("b", core.BodyMaxLen+1), nil)
		assert.ErrorIs(t, err, core.ErrInvalidNote)
	})

	t.Run("long payload bodies are truncated before mirroring", func(t *testing.T) {
		note, err := svc.CreateNote(ctx, "Long", strings.Repeat("x", 600), nil)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return idx.Has(note.ID)
		}, mirrorWait, 10*time.Millisecond)

		payload, _ := idx.Payload(note.ID)
		assert.Len(t, []rune(payload.Body), core.PayloadBodyLen+len(core.Ellipsis))
	})
}

func TestCreateNoteWithoutEmbedder(t *testing.T) {
	ctx := context.Background()
	idx := mock.NewMockIndex()
	svc := setupService(t, nil, idx)

	note, err := svc.CreateNote(ctx, "Plain", "no embedding here", nil)
	require.NoError(t, err)
	assert.Nil(t, note.Embedding)

	// Nothing to mirror without an embedding.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, idx.Len())

	_, err = svc.SearchNotesSemantic(ctx, "anything", 10, 0)
	assert.ErrorIs(t, err, core.ErrServiceUnavailable)
}

func TestGetNote(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t, nil, nil)

	note, err := svc.CreateNote(ctx, "Find me", "body", nil)
	require.NoError(t, err)

	got, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, note.Title, got.Title)

	t.Run("unknown id", func(t *testing.T) {
		got, err := svc.GetNote(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("malformed id is treated as missing", func(t *testing.T) {
		got, err := svc.GetNote(ctx, "not-a-uuid")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUpdateNote(t *testing.T) {
	ctx := context.Background()
	idx := mock.NewMockIndex()
	svc := setupService(t, ai.NewSyntheticEmbedder(), idx)

	note, err := svc.CreateNote(ctx, "Original", "first body", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return idx.Has(note.ID) }, mirrorWait, 10*time.Millisecond)

	t.Run("content change refreshes embedding and mirror", func(t *testing.T) {
		body := "completely different body"
		updated, err := svc.UpdateNote(ctx, note.ID, &core.NoteUpdate{Body: &body})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, body, updated.Body)

		require.Eventually(t, func() bool {
			stored, err := svc.GetNote(ctx, note.ID)
			if err != nil || stored == nil {
				return false
			}
			want, _ := ai.NewSyntheticEmbedder().EmbedText(ctx, body)
			if len(stored.Embedding) != len(want) {
				return false
			}
			for i := range want {
				if stored.Embedding[i] != want[i] {
					return false
				}
			}
			return true
		}, mirrorWait, 10*time.Millisecond, "stored embedding should track the new body")
	})

	t.Run("tag-only change keeps embedding", func(t *testing.T) {
		before, err := svc.GetNote(ctx, note.ID)
		require.NoError(t, err)

		tags := []string{"archive"}
		updated, err := svc.UpdateNote(ctx, note.ID, &core.NoteUpdate{Tags: &tags})
		require.NoError(t, err)
		assert.Equal(t, []string{"archive"}, updated.Tags)
		assert.Equal(t, before.Embedding, updated.Embedding)
	})

	t.Run("empty update is invalid", func(t *testing.T) {
		_, err := svc.UpdateNote(ctx, note.ID, &core.NoteUpdate{})
		assert.ErrorIs(t, err, core.ErrInvalidInput)

		_, err = svc.UpdateNote(ctx, note.ID, nil)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("unknown and malformed ids return nil", func(t *testing.T) {
		title := "new"
		got, err := svc.UpdateNote(ctx, uuid.NewString(), &core.NoteUpdate{Title: &title})
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = svc.UpdateNote(ctx, "nope", &core.NoteUpdate{Title: &title})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestDeleteNote(t *testing.T) {
	ctx := context.Background()
	idx := mock.NewMockIndex()
	svc := setupService(t, ai.NewSyntheticEmbedder(), idx)

	note, err := svc.CreateNote(ctx, "Doomed", "body", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return idx.Has(note.ID) }, mirrorWait, 10*time.Millisecond)

	deleted, err := svc.DeleteNote(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	require.Eventually(t, func() bool {
		return !idx.Has(note.ID)
	}, mirrorWait, 10*time.Millisecond, "vector should be removed from the index")

	t.Run("unknown and malformed ids report false", func(t *testing.T) {
		deleted, err := svc.DeleteNote(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = svc.DeleteNote(ctx, "###")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestMirrorFailureNeverSurfaces(t *testing.T) {
	ctx := context.Background()
	idx := mock.NewMockIndex()
	idx.UpsertErr = errors.New("index down")
	svc := setupService(t, ai.NewSyntheticEmbedder(), idx)

	note, err := svc.CreateNote(ctx, "Still fine", "body", nil)
	require.NoError(t, err)

	got, err := svc.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSearchNotes(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t, ai.NewSyntheticEmbedder(), mock.NewMockIndex())

	_, err := svc.CreateNote(ctx, "Coffee brewing", "v60 pour over technique", nil)
	require.NoError(t, err)
	_, err = svc.CreateNote(ctx, "Tea", "green tea brewing temperature", nil)
	require.NoError(t, err)

	results, err := svc.SearchNotes(ctx, "brewing", 10, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "Coffee brewing", results[0].Title)

	results, err = svc.SearchNotesPattern(ctx, "v[0-9]+", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Coffee brewing", results[0].Title)
}

func TestSemanticSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	idx := mock.NewMockIndex()
	svc := setupService(t, ai.NewSyntheticEmbedder(), idx)

	note, err := svc.CreateNote(ctx, "Exact", "the quick brown fox", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return idx.Has(note.ID) }, mirrorWait, 10*time.Millisecond)

	// The synthetic embedder is deterministic, so searching with the
	// stored body is an exact vector match.
	results, err := svc.SearchNotesSemantic(ctx, "the quick brown fox", 10, 0.9)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, note.ID, results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	idx := mock.NewMockIndex()
	svc := setupService(t, ai.NewSyntheticEmbedder(), idx)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateNote(ctx, "Note", "body", nil)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return idx.Len() == 3 }, mirrorWait, 10*time.Millisecond)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalNotes)
	assert.Equal(t, int64(3), stats.NotesLastWeek)
	assert.Equal(t, int64(3), stats.VectorIndex.Vectors)
	assert.Equal(t, string(vectorindex.StatusReady), stats.VectorIndex.Status)
}

func TestListNotesPassthrough(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t, nil, nil)

	for _, title := range []string{"one", "two", "three"} {
		_, err := svc.CreateNote(ctx, title, "body", []string{"all"})
		require.NoError(t, err)
	}

	got, err := svc.ListNotes(ctx, storage.ListOptions{Tag: "all", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

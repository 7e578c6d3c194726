package jotted

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/vectorindex"
	"github.com/jotted/jotted/vectorindex/mock"
)

func TestDatabaseLifecycle(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	note, err := db.Notes().CreateNote(ctx, "First", "hello world", []string{"intro"})
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Len(t, note.Embedding, core.EmbeddingDim)

	got, err := db.Notes().GetNote(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "First", got.Title)

	// No index configured: semantic search degrades, lexical works.
	assert.Equal(t, vectorindex.StatusUnconfigured, db.VectorIndex().Status())

	_, err = db.Notes().SearchNotesSemantic(ctx, "hello", 10, 0)
	assert.ErrorIs(t, err, core.ErrServiceUnavailable)

	results, err := db.Notes().SearchNotes(ctx, "hello", 10, 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDatabaseWithVectorIndex(t *testing.T) {
	idx := mock.NewMockIndex()
	db, err := NewDatabase("", WithInMemory(), WithVectorIndex(idx))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, vectorindex.StatusReady, db.VectorIndex().Status())
}

func TestDatabaseEmbeddingDisabled(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(), WithEmbeddingDisabled())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	note, err := db.Notes().CreateNote(ctx, "Plain", "no vectors", nil)
	require.NoError(t, err)
	assert.Nil(t, note.Embedding)

	_, err = db.Notes().SearchNotesSemantic(ctx, "anything", 10, 0)
	assert.ErrorIs(t, err, core.ErrServiceUnavailable)
}

func TestDatabaseOnDisk(t *testing.T) {
	dir := t.TempDir()

	db, err := NewDatabase(dir)
	require.NoError(t, err)

	ctx := context.Background()
	note, err := db.Notes().CreateNote(ctx, "Durable", "survives reopen", nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dir)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Notes().GetNote(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Durable", got.Title)

	// The rebuilt text index serves the reopened store.
	results, err := db.Notes().SearchNotes(ctx, "survives", 10, 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

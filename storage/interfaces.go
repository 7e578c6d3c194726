package storage

import (
	"context"
	"time"

	"github.com/jotted/jotted/core"
)

// Sort fields accepted by ListOptions.
const (
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByTitle     = "title"
)

// Sort orders accepted by ListOptions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListOptions control ordering and pagination for ListNotes.
// Zero values mean: sort by createdAt descending, no skip, no limit.
type ListOptions struct {
	SortBy    string
	SortOrder string
	Skip      int
	Limit     int
	Tag       string // optional: only notes carrying this tag
}

// ScoredNote pairs a note with a text-relevance score from the full-text index.
type ScoredNote struct {
	Note  *core.Note
	Score float64
}

// NoteRepository provides operations for managing notes.
// Implementations must be thread-safe and support concurrent access.
//
// Identifiers are opaque strings. Lookups for unknown ids return nil (or
// false for deletes) rather than an error, so callers can treat "nothing to
// do" separately from failure.
type NoteRepository interface {
	// AddNote persists a new note. The caller supplies ID and timestamps.
	AddNote(ctx context.Context, note *core.Note) error

	// GetNote retrieves a single note by ID. Returns nil if it doesn't exist.
	GetNote(ctx context.Context, id string) (*core.Note, error)

	// GetNotes retrieves multiple notes by their IDs.
	// Returns only the notes that exist (no error for missing notes).
	GetNotes(ctx context.Context, ids ...string) ([]*core.Note, error)

	// ListNotes retrieves notes with sorting, pagination, and an optional
	// tag filter.
	ListNotes(ctx context.Context, opts ListOptions) ([]*core.Note, error)

	// UpdateNote applies a partial update and refreshes UpdatedAt.
	// Returns the updated note, or nil if no note with the id exists.
	UpdateNote(ctx context.Context, id string, update *core.NoteUpdate) (*core.Note, error)

	// DeleteNote removes a note by ID. Returns false if it didn't exist.
	DeleteNote(ctx context.Context, id string) (bool, error)

	// SetEmbedding replaces the stored embedding for a note without
	// touching its timestamps. A no-op when the note doesn't exist.
	SetEmbedding(ctx context.Context, id string, embedding []float32) error

	// CountNotes returns the total number of stored notes.
	CountNotes(ctx context.Context) (int64, error)

	// CountNotesCreatedSince returns the number of notes with
	// CreatedAt >= since.
	CountNotesCreatedSince(ctx context.Context, since time.Time) (int64, error)

	// SearchText runs the weighted full-text query (title weighted 2x,
	// body 1x) and returns notes ordered by descending relevance score,
	// after skip/limit. Fails with ErrTextIndex when the index cannot
	// serve the query; callers decide whether to fall back.
	SearchText(ctx context.Context, query string, limit, skip int) ([]*ScoredNote, error)

	// FindByPattern matches notes whose title or body matches the
	// case-insensitive pattern, ordered by descending CreatedAt, after
	// skip/limit.
	//
	// The raw pattern is compiled as a live regular expression without
	// escaping, so metacharacters keep their regex meaning. A pattern that
	// fails to compile is retried as a literal substring match.
	FindByPattern(ctx context.Context, pattern string, limit, skip int) ([]*core.Note, error)

	// Close closes the repository and releases resources.
	Close() error
}

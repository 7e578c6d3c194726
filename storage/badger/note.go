package badger

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/storage"
)

// NoteRepository implements storage.NoteRepository for BadgerDB.
//
// Notes live in the primary key space; a secondary index keyed by creation
// time supports date ordering without a full scan. An in-memory full-text
// index over titles and bodies is rebuilt on open and kept in sync on every
// write.
type NoteRepository struct {
	backend *Backend
	text    *textIndex
	logger  *slog.Logger
}

var _ storage.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a NoteRepository and rebuilds the full-text
// index from the stored notes. If the index cannot be built, the repository
// still serves reads and writes; SearchText fails with ErrTextIndex until
// the process restarts.
func NewNoteRepository(backend *Backend) (*NoteRepository, error) {
	r := &NoteRepository{
		backend: backend,
		logger:  slog.Default().With("component", "note-repository"),
	}

	text, err := newTextIndex()
	if err != nil {
		r.logger.Warn("full-text index unavailable", "error", err)
		return r, nil
	}
	r.text = text

	if err := r.rebuildTextIndex(); err != nil {
		r.logger.Warn("full-text index rebuild failed", "error", err)
		if closeErr := text.close(); closeErr != nil {
			r.logger.Warn("closing broken text index", "error", closeErr)
		}
		r.text = nil
	}

	return r, nil
}

// Close releases the full-text index. The backend is owned by the caller.
func (r *NoteRepository) Close() error {
	if r.text != nil {
		return r.text.close()
	}
	return nil
}

func (r *NoteRepository) rebuildTextIndex() error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(noteRecordPrefix + ":")

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var note *core.Note
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				note, err = storage.UnmarshalNote(val)
				return err
			}); err != nil {
				return err
			}
			if err := r.text.index(note); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// syncTextIndex updates the full-text index after a primary write. Index
// failures never fail the write; they are logged and the next search may
// return stale results for this note.
func (r *NoteRepository) syncTextIndex(note *core.Note) {
	if r.text == nil {
		return
	}
	if err := r.text.index(note); err != nil {
		r.logger.Warn("text index update failed", "id", note.ID, "error", err)
	}
}

func (r *NoteRepository) removeFromTextIndex(id string) {
	if r.text == nil {
		return
	}
	if err := r.text.remove(id); err != nil {
		r.logger.Warn("text index delete failed", "id", id, "error", err)
	}
}

// readNote reads and unmarshals a single note. Returns nil when the key
// doesn't exist.
func (r *NoteRepository) readNote(tx *badger.Txn, key []byte) (*core.Note, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var note *core.Note
	err = item.Value(func(val []byte) error {
		var err error
		note, err = storage.UnmarshalNote(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// AddNote persists a new note and updates the date and full-text indexes.
func (r *NoteRepository) AddNote(ctx context.Context, note *core.Note) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		value, err := storage.MarshalNote(note)
		if err != nil {
			return err
		}
		if err := tx.Set(makeNoteKey(note.ID), value); err != nil {
			return err
		}
		if err := tx.Set(makeNoteDateKey(note.CreatedAt, note.ID), []byte(note.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	r.syncTextIndex(note)
	return nil
}

// GetNote retrieves a single note by ID. Returns nil if it doesn't exist.
func (r *NoteRepository) GetNote(ctx context.Context, id string) (*core.Note, error) {
	var result *core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readNote(tx, makeNoteKey(id))
		return err
	}, false)
	return result, err
}

// GetNotes retrieves multiple notes by their IDs, skipping missing ones.
func (r *NoteRepository) GetNotes(ctx context.Context, ids ...string) ([]*core.Note, error) {
	var result []*core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			note, err := r.readNote(tx, makeNoteKey(id))
			if err != nil {
				return err
			}
			if note != nil {
				result = append(result, note)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListNotes retrieves notes with sorting, pagination, and an optional tag
// filter. Sorting happens in memory; the working set of a personal note
// store fits comfortably.
func (r *NoteRepository) ListNotes(ctx context.Context, opts storage.ListOptions) ([]*core.Note, error) {
	if opts.Skip < 0 || opts.Limit < 0 {
		return nil, fmt.Errorf("%w: negative skip or limit", storage.ErrInvalidQuery)
	}

	var notes []*core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(noteRecordPrefix + ":")

		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var note *core.Note
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				note, err = storage.UnmarshalNote(val)
				return err
			}); err != nil {
				return err
			}
			if opts.Tag == "" || slices.Contains(note.Tags, opts.Tag) {
				notes = append(notes, note)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if err := sortNotes(notes, opts.SortBy, opts.SortOrder); err != nil {
		return nil, err
	}

	return paginate(notes, opts.Skip, opts.Limit), nil
}

func sortNotes(notes []*core.Note, sortBy, sortOrder string) error {
	if sortBy == "" {
		sortBy = storage.SortByCreatedAt
	}
	if sortOrder == "" {
		sortOrder = storage.SortDesc
	}

	var less func(a, b *core.Note) bool
	switch sortBy {
	case storage.SortByCreatedAt:
		less = func(a, b *core.Note) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case storage.SortByUpdatedAt:
		less = func(a, b *core.Note) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case storage.SortByTitle:
		less = func(a, b *core.Note) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	default:
		return fmt.Errorf("%w: unknown sort field %q", storage.ErrInvalidQuery, sortBy)
	}

	switch sortOrder {
	case storage.SortAsc:
	case storage.SortDesc:
		inner := less
		less = func(a, b *core.Note) bool { return inner(b, a) }
	default:
		return fmt.Errorf("%w: unknown sort order %q", storage.ErrInvalidQuery, sortOrder)
	}

	sort.SliceStable(notes, func(i, j int) bool { return less(notes[i], notes[j]) })
	return nil
}

func paginate(notes []*core.Note, skip, limit int) []*core.Note {
	if skip >= len(notes) {
		return []*core.Note{}
	}
	notes = notes[skip:]
	if limit > 0 && limit < len(notes) {
		notes = notes[:limit]
	}
	return notes
}

// UpdateNote applies a partial update and refreshes UpdatedAt. A nil tags
// pointer leaves tags alone; a pointer to an empty slice clears them.
// Returns nil when no note with the id exists.
func (r *NoteRepository) UpdateNote(ctx context.Context, id string, update *core.NoteUpdate) (*core.Note, error) {
	var result *core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeNoteKey(id)
		note, err := r.readNote(tx, key)
		if err != nil {
			return err
		}
		if note == nil {
			return nil
		}

		if update.Title != nil {
			note.Title = *update.Title
		}
		if update.Body != nil {
			note.Body = *update.Body
		}
		if update.Tags != nil {
			note.Tags = slices.Clone(*update.Tags)
		}
		note.UpdatedAt = time.Now().UTC()

		value, err := storage.MarshalNote(note)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		result = note
		return nil
	}, true)
	if err != nil {
		return nil, err
	}

	if result != nil && update.ChangesContent() {
		r.syncTextIndex(result)
	}
	return result, nil
}

// DeleteNote removes a note and its index entries. Returns false if the
// note didn't exist.
func (r *NoteRepository) DeleteNote(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeNoteKey(id)
		note, err := r.readNote(tx, key)
		if err != nil {
			return err
		}
		if note == nil {
			return nil
		}

		if err := tx.Delete(makeNoteDateKey(note.CreatedAt, note.ID)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		deleted = true
		return nil
	}, true)
	if err != nil {
		return false, err
	}

	if deleted {
		r.removeFromTextIndex(id)
	}
	return deleted, nil
}

// SetEmbedding replaces the stored embedding without touching timestamps.
func (r *NoteRepository) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeNoteKey(id)
		note, err := r.readNote(tx, key)
		if err != nil {
			return err
		}
		if note == nil {
			return nil
		}

		note.Embedding = slices.Clone(embedding)
		value, err := storage.MarshalNote(note)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CountNotes returns the total number of stored notes.
func (r *NoteRepository) CountNotes(ctx context.Context) (int64, error) {
	var count int64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(noteRecordPrefix + ":")
		opts.PrefetchValues = false

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// CountNotesCreatedSince returns the number of notes with CreatedAt >= since.
func (r *NoteRepository) CountNotesCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialNoteDateKey(since)
		prefix := []byte(noteRecordDatePrefix + ":")

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// SearchText runs the weighted full-text query against the in-memory index
// and resolves the hits back to stored notes, preserving relevance order.
func (r *NoteRepository) SearchText(ctx context.Context, query string, limit, skip int) ([]*storage.ScoredNote, error) {
	if r.text == nil {
		return nil, fmt.Errorf("%w: index not built", storage.ErrTextIndex)
	}

	matches, err := r.text.search(query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrTextIndex, err)
	}

	results := make([]*storage.ScoredNote, 0, len(matches))
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, m := range matches {
			note, err := r.readNote(tx, makeNoteKey(m.id))
			if err != nil {
				return err
			}
			// A hit may outlive its note if an index update was lost.
			if note != nil {
				results = append(results, &storage.ScoredNote{Note: note, Score: m.score})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindByPattern matches notes whose title or body matches the
// case-insensitive pattern, newest first. The raw pattern is compiled as a
// regular expression; one that fails to compile is retried as a literal
// substring match.
func (r *NoteRepository) FindByPattern(ctx context.Context, pattern string, limit, skip int) ([]*core.Note, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re, err = regexp.Compile("(?i)" + regexp.QuoteMeta(pattern))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrInvalidQuery, err)
		}
	}

	var results []*core.Note
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		// Walk the date index in reverse so newest notes come first.
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialNoteDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(noteRecordDatePrefix + ":")

		skipped := 0
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var noteID string
			if err := iter.Item().Value(func(val []byte) error {
				noteID = string(val)
				return nil
			}); err != nil {
				return err
			}

			note, err := r.readNote(tx, makeNoteKey(noteID))
			if err != nil {
				return err
			}
			if note == nil {
				continue
			}
			if !re.MatchString(note.Title) && !re.MatchString(note.Body) {
				continue
			}

			if skipped < skip {
				skipped++
				continue
			}
			results = append(results, note)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

package core

import (
	"strings"
	"time"
)

const (
	// TitleMaxLen is the maximum length of a note title after trimming.
	TitleMaxLen = 200

	// BodyMaxLen is the maximum length of a note body after trimming.
	BodyMaxLen = 10000

	// EmbeddingDim is the fixed length of note embedding vectors.
	EmbeddingDim = 1536

	// ResultBodyLen is the maximum body length carried in a SearchResult.
	ResultBodyLen = 200

	// PayloadBodyLen is the maximum body length mirrored into the vector index.
	PayloadBodyLen = 500

	// Ellipsis marks a truncated body.
	Ellipsis = "..."
)

// Note is a persisted note. The document store owns it as source of truth;
// the vector index only ever holds a derived projection of it.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteUpdate describes a partial update to a note.
// Nil fields are left unchanged. A non-nil empty Tags slice clears the tags.
type NoteUpdate struct {
	Title *string
	Body  *string
	Tags  *[]string
}

// Empty reports whether the update changes nothing.
func (u *NoteUpdate) Empty() bool {
	return u == nil || (u.Title == nil && u.Body == nil && u.Tags == nil)
}

// ChangesContent reports whether the update touches title or body,
// which is what decides whether a note gets re-embedded.
func (u *NoteUpdate) ChangesContent() bool {
	return u != nil && (u.Title != nil || u.Body != nil)
}

// SearchResult is the projection returned by both search strategies.
// Score is a text-relevance score for lexical search or a cosine similarity
// in [-1, 1] for semantic search; the two are not comparable across strategies.
type SearchResult struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResultFromNote projects a note into a SearchResult with the given score.
// The body is truncated uniformly for every result.
func ResultFromNote(note *Note, score float64) *SearchResult {
	return &SearchResult{
		ID:        note.ID,
		Title:     note.Title,
		Body:      TruncateBody(note.Body, ResultBodyLen),
		Score:     score,
		CreatedAt: note.CreatedAt,
	}
}

// TruncateBody cuts body to at most max characters, appending an ellipsis
// marker when anything was cut.
func TruncateBody(body string, max int) string {
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + Ellipsis
}

// NormalizeTags trims every tag and drops empty or whitespace-only entries,
// preserving the original order of the remainder.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}

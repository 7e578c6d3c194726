package server

import (
	"time"

	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/notes"
)

type createNoteRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

type updateNoteRequest struct {
	Title *string   `json:"title"`
	Body  *string   `json:"body"`
	Tags  *[]string `json:"tags"`
}

// noteResponse is a note without its embedding.
type noteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNoteResponse(note *core.Note) noteResponse {
	return noteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Body:      note.Body,
		Tags:      note.Tags,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func toNoteResponses(list []*core.Note) []noteResponse {
	out := make([]noteResponse, 0, len(list))
	for _, n := range list {
		out = append(out, toNoteResponse(n))
	}
	return out
}

type searchResponse struct {
	Results []*core.SearchResult `json:"results"`
}

type statsResponse struct {
	notes.Stats
}

type errorResponse struct {
	Error string `json:"error"`
}

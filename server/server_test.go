package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotted/jotted/ai"
	"github.com/jotted/jotted/notes"
	badgerstore "github.com/jotted/jotted/storage/badger"
	"github.com/jotted/jotted/vectorindex"
	"github.com/jotted/jotted/vectorindex/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupServer(t *testing.T, idx *mock.MockIndex) *Server {
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

	service, err := notes.NewService(repo, ai.NewSyntheticEmbedder(), manager)
	require.NoError(t, err)
	t.Cleanup(service.Release)

	srv, err := NewServer(service)
	require.NoError(t, err)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func createNote(t *testing.T, srv *Server, title, body string, tags []string) noteResponse {
	t.Helper()

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/notes", createNoteRequest{
		Title: title, Body: body, Tags: tags,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var note noteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
	return note
}

func TestHealthEndpoint(t *testing.T) {
	srv := setupServer(t, nil)
	rec := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNoteEndpoints(t *testing.T) {
	srv := setupServer(t, nil)

	note := createNote(t, srv, "Shopping", "milk and eggs", []string{"errands"})
	assert.NotEmpty(t, note.ID)

	t.Run("embeddings never leave the server", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/notes/"+note.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.NotContains(t, raw, "embedding")
	})

	t.Run("invalid note is rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/notes", createNoteRequest{Title: "", Body: "body"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/notes/not-a-real-id", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list with tag filter", func(t *testing.T) {
		createNote(t, srv, "Untagged", "nothing", nil)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/notes?tag=errands", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Notes []noteResponse `json:"notes"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Notes, 1)
		assert.Equal(t, note.ID, body.Notes[0].ID)
	})

	t.Run("update and delete", func(t *testing.T) {
		title := "Groceries"
		rec := doRequest(t, srv, http.MethodPatch, "/api/v1/notes/"+note.ID, updateNoteRequest{Title: &title})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated noteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Groceries", updated.Title)

		rec = doRequest(t, srv, http.MethodPatch, "/api/v1/notes/"+note.ID, updateNoteRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doRequest(t, srv, http.MethodDelete, "/api/v1/notes/"+note.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, srv, http.MethodDelete, "/api/v1/notes/"+note.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSearchEndpoint(t *testing.T) {
	srv := setupServer(t, nil)

	createNote(t, srv, "Kubernetes notes", "pods and services", nil)
	createNote(t, srv, "Cooking", "pasta with garlic", nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/search?q=kubernetes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Kubernetes notes", body.Results[0].Title)

	t.Run("pattern mode", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/search?q=pa.ta&mode=pattern", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body searchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Results, 1)
		assert.Equal(t, "Cooking", body.Results[0].Title)
	})

	t.Run("empty query is an empty result, not an error", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/search?q=", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body searchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Empty(t, body.Results)
	})
}

func TestSemanticSearchEndpoint(t *testing.T) {
	t.Run("unavailable index is 503", func(t *testing.T) {
		srv := setupServer(t, nil)
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/search/semantic?q=anything", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("invalid threshold is 400", func(t *testing.T) {
		srv := setupServer(t, mock.NewMockIndex())
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/search/semantic?q=x&threshold=high", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStatsEndpoint(t *testing.T) {
	srv := setupServer(t, mock.NewMockIndex())
	createNote(t, srv, "One", "body", nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats notes.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalNotes)
	assert.Equal(t, string(vectorindex.StatusReady), stats.VectorIndex.Status)
}

package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jotted/jotted/core"
	"github.com/jotted/jotted/storage"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCreateNote(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	note, err := s.service.CreateNote(c.Request.Context(), req.Title, req.Body, req.Tags)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toNoteResponse(note))
}

func (s *Server) handleGetNote(c *gin.Context) {
	note, err := s.service.GetNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if note == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "note not found"})
		return
	}
	c.JSON(http.StatusOK, toNoteResponse(note))
}

func (s *Server) handleListNotes(c *gin.Context) {
	opts := storage.ListOptions{
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Tag:       c.Query("tag"),
		Skip:      intQuery(c, "skip", 0),
		Limit:     intQuery(c, "limit", 0),
	}

	list, err := s.service.ListNotes(c.Request.Context(), opts)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": toNoteResponses(list)})
}

func (s *Server) handleUpdateNote(c *gin.Context) {
	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	update := &core.NoteUpdate{Title: req.Title, Body: req.Body, Tags: req.Tags}
	note, err := s.service.UpdateNote(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if note == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "note not found"})
		return
	}
	c.JSON(http.StatusOK, toNoteResponse(note))
}

func (s *Server) handleDeleteNote(c *gin.Context) {
	deleted, err := s.service.DeleteNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, errorResponse{Error: "note not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	limit := clampLimit(intQuery(c, "limit", defaultSearchLimit))
	skip := intQuery(c, "skip", 0)

	var (
		results []*core.SearchResult
		err     error
	)
	if c.Query("mode") == "pattern" {
		results, err = s.service.SearchNotesPattern(c.Request.Context(), query, limit, skip)
	} else {
		results, err = s.service.SearchNotes(c.Request.Context(), query, limit, skip)
	}
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchResponse{Results: results})
}

func (s *Server) handleSemanticSearch(c *gin.Context) {
	query := c.Query("q")
	limit := clampLimit(intQuery(c, "limit", defaultSearchLimit))

	threshold := 0.0
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid threshold"})
			return
		}
		threshold = parsed
	}

	results, err := s.service.SearchNotesSemantic(c.Request.Context(), query, limit, threshold)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchResponse{Results: results})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.service.GetStats(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{Stats: *stats})
}

func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidNote), errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, storage.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

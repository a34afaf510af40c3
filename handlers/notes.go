package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"study-notes/models"
	"study-notes/store"
)

const (
	defaultPage  = 1
	defaultLimit = 100
	maxLimit     = 1000
)

type noteRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,notblank,max=100000"`
	Groups  IDList `json:"groups" validate:"omitempty,dive,id"`
}

type notesPage struct {
	Notes     []models.Note `json:"notes"`
	Page      int           `json:"page"`
	Limit     int           `json:"limit"`
	TotalRows int           `json:"totalRows"`
}

// prepareNote trims the title and strips unsafe markup from the content.
func (h *Handler) prepareNote(req *noteRequest) func() {
	return func() {
		req.Title = strings.TrimSpace(req.Title)
		req.Content = h.sanitizer.Sanitize(req.Content)
	}
}

func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", defaultPage)
	limit := queryInt(r, "limit", defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	// Keeps the offset from overflowing; such a page is simply empty.
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}

	notes, total, err := h.store.ListNotes(r.Context(), getUserID(r), limit, (page-1)*limit)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notesPage{Notes: notes, Page: page, Limit: limit, TotalRows: total})
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !h.decode(w, r, &req, h.prepareNote(&req)) {
		return
	}

	note, err := h.store.CreateNote(r.Context(), getUserID(r), req.Title, req.Content, req.Groups)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req noteRequest
	if !h.decode(w, r, &req, h.prepareNote(&req)) {
		return
	}

	note, err := h.store.UpdateNote(r.Context(), getUserID(r), id, req.Title, req.Content)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	note, err := h.store.DeleteNote(r.Context(), getUserID(r), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Note deleted", "note": note})
}

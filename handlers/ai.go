package handlers

import (
	"errors"
	"net/http"
	"strings"

	"study-notes/ai"
	"study-notes/models"
	"study-notes/store"
)

type askRequest struct {
	Question string `json:"question" validate:"required,min=3,max=1000"`
	Prompt   string `json:"prompt" validate:"omitempty,oneof=Explain Summarize Continue 'Fix Grammar'"`
}

type askNoteRequest struct {
	Question string `json:"question" validate:"required,min=3,max=1000"`
	NoteID   int    `json:"noteId" validate:"required,id"`
}

type summarizeGroupsRequest struct {
	GroupIDs IDList `json:"group_ids" validate:"required,min=1,dive,id"`
}

type titleRequest struct {
	Note string `json:"note" validate:"required,min=3,max=10000"`
}

type groupQuizRequest struct {
	Groups IDList `json:"groups" validate:"required,min=1,dive,id"`
}

// aiError reports a failed AI call. Provider errors carry their own message
// to the client; anything else is a generic 500.
func (h *Handler) aiError(w http.ResponseWriter, r *http.Request, err error) {
	var upErr *ai.UpstreamError
	switch {
	case errors.As(err, &upErr):
		h.log.WithError(err).WithField("path", r.URL.Path).Error("AI provider call failed")
		writeError(w, http.StatusInternalServerError, upErr.Error())
	case errors.Is(err, ai.ErrMalformedQuiz):
		h.log.WithError(err).WithField("path", r.URL.Path).Warn("AI returned an invalid quiz")
		writeError(w, http.StatusInternalServerError, ai.ErrMalformedQuiz.Error())
	default:
		h.internalError(w, r, err)
	}
}

// ownedNote loads a note of the caller, answering 404 or 500 itself when it
// cannot.
func (h *Handler) ownedNote(w http.ResponseWriter, r *http.Request, noteID int) (models.Note, bool) {
	note, err := h.store.GetNote(r.Context(), getUserID(r), noteID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Note not found")
		return models.Note{}, false
	}
	if err != nil {
		h.internalError(w, r, err)
		return models.Note{}, false
	}
	return note, true
}

func (h *Handler) groupNotes(w http.ResponseWriter, r *http.Request, groupIDs []int) ([]models.Note, bool) {
	notes, err := h.store.NotesInGroups(r.Context(), getUserID(r), groupIDs)
	if err != nil {
		h.internalError(w, r, err)
		return nil, false
	}
	if len(notes) == 0 {
		writeError(w, http.StatusNotFound, "No notes found with provided groups...")
		return nil, false
	}
	return notes, true
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !h.decode(w, r, &req, func() {
		req.Question = strings.TrimSpace(req.Question)
		req.Prompt = strings.TrimSpace(req.Prompt)
	}) {
		return
	}

	answer, err := h.ai.Ask(r.Context(), req.Question, req.Prompt)
	if err != nil {
		h.aiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (h *Handler) AskNote(w http.ResponseWriter, r *http.Request) {
	var req askNoteRequest
	if !h.decode(w, r, &req, func() { req.Question = strings.TrimSpace(req.Question) }) {
		return
	}
	note, ok := h.ownedNote(w, r, req.NoteID)
	if !ok {
		return
	}

	answer, err := h.ai.AskAboutNotes(r.Context(), []models.Note{note}, req.Question)
	if err != nil {
		h.aiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// SummarizeAll summarizes every note of the caller.
func (h *Handler) SummarizeAll(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.AllNotes(r.Context(), getUserID(r))
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	summary, err := h.ai.Summarize(r.Context(), notes)
	if err != nil {
		h.aiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (h *Handler) SummarizeNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	note, ok := h.ownedNote(w, r, id)
	if !ok {
		return
	}

	summary, err := h.ai.Summarize(r.Context(), []models.Note{note})
	if err != nil {
		h.aiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (h *Handler) SummarizeGroups(w http.ResponseWriter, r *http.Request) {
	var req summarizeGroupsRequest
	if !h.decode(w, r, &req, nil) {
		return
	}
	notes, ok := h.groupNotes(w, r, req.GroupIDs)
	if !ok {
		return
	}

	summary, err := h.ai.Summarize(r.Context(), notes)
	if err != nil {
		h.aiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// CreateTitle proposes a title for unsaved note text.
func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if !h.decode(w, r, &req, func() { req.Note = strings.TrimSpace(req.Note) }) {
		return
	}

	title, err := h.ai.Title(r.Context(), req.Note)
	if err != nil {
		h.aiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": title})
}

func (h *Handler) NoteQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	note, ok := h.ownedNote(w, r, id)
	if !ok {
		return
	}

	quiz, err := h.ai.NoteQuiz(r.Context(), note)
	if err != nil {
		h.aiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) GroupQuiz(w http.ResponseWriter, r *http.Request) {
	var req groupQuizRequest
	if !h.decode(w, r, &req, nil) {
		return
	}
	notes, ok := h.groupNotes(w, r, req.Groups)
	if !ok {
		return
	}

	quiz, err := h.ai.GroupQuiz(r.Context(), notes)
	if err != nil {
		h.aiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

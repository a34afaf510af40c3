package handlers

import (
	"errors"
	"net/http"
	"strings"

	"study-notes/store"
)

type createGroupRequest struct {
	Name     string `json:"name" validate:"required,max=200,groupname"`
	NotesIDs IDList `json:"notes_ids" validate:"omitempty,dive,id"`
}

type renameGroupRequest struct {
	Name    string `json:"name" validate:"required,max=200,groupname"`
	GroupID int    `json:"group_id" validate:"required,id"`
}

type deleteGroupsRequest struct {
	IDs IDList `json:"ids" validate:"required,min=1,dive,id"`
}

type replaceGroupsRequest struct {
	NoteID   int    `json:"note_id" validate:"required,id"`
	GroupIDs IDList `json:"group_ids" validate:"required,dive,id"`
}

func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups(r.Context(), getUserID(r))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !h.decode(w, r, &req, func() { req.Name = strings.TrimSpace(req.Name) }) {
		return
	}

	group, err := h.store.CreateGroup(r.Context(), getUserID(r), req.Name, req.NotesIDs)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *Handler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	var req renameGroupRequest
	if !h.decode(w, r, &req, func() { req.Name = strings.TrimSpace(req.Name) }) {
		return
	}

	group, err := h.store.RenameGroup(r.Context(), getUserID(r), req.GroupID, req.Name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) DeleteGroups(w http.ResponseWriter, r *http.Request) {
	var req deleteGroupsRequest
	if !h.decode(w, r, &req, nil) {
		return
	}

	n, err := h.store.DeleteGroups(r.Context(), getUserID(r), req.IDs)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// GetGroupNotes lists the notes in one group.
func (h *Handler) GetGroupNotes(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "group_id")
	if !ok {
		return
	}

	notes, err := h.store.NotesInGroup(r.Context(), getUserID(r), groupID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// GetNoteGroups lists the groups a note belongs to.
func (h *Handler) GetNoteGroups(w http.ResponseWriter, r *http.Request) {
	noteID, ok := pathID(w, r, "note_id")
	if !ok {
		return
	}

	groups, err := h.store.GroupsForNote(r.Context(), getUserID(r), noteID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// GetNoteGroupIDs is GetNoteGroups reduced to ids.
func (h *Handler) GetNoteGroupIDs(w http.ResponseWriter, r *http.Request) {
	noteID, ok := pathID(w, r, "note_id")
	if !ok {
		return
	}

	ids, err := h.store.GroupIDsForNote(r.Context(), getUserID(r), noteID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": ids})
}

// ReplaceNoteGroups sets the exact group membership of a note.
func (h *Handler) ReplaceNoteGroups(w http.ResponseWriter, r *http.Request) {
	var req replaceGroupsRequest
	if !h.decode(w, r, &req, nil) {
		return
	}

	ids, err := h.store.ReplaceNoteGroups(r.Context(), getUserID(r), req.NoteID, req.GroupIDs)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Note or group not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "groups": ids})
}

package handlers

import (
	"net/http"

	"github.com/gigboard/engine/internal/api/types"
	"github.com/gigboard/engine/internal/services"
)

type NotesHandler struct {
	notes services.NoteService
}

func NewNotesHandler(notes services.NoteService) *NotesHandler {
	return &NotesHandler{notes: notes}
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	notes, err := h.notes.List(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NotesHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.notes.Add(r.Context(), id, req.Content, actorOf(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.MessageResponse{ID: n.ID, Message: "note saved"})
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	noteID, err := pathID(r, "noteId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.notes.Delete(r.Context(), actorOf(r), projectID, noteID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "note deleted"})
}

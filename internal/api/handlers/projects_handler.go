package handlers

import (
	"net/http"
	"strings"

	"github.com/gigboard/engine/internal/api/types"
	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/services"
)

type ProjectsHandler struct {
	projects services.ProjectService
}

func NewProjectsHandler(projects services.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

// List honours ?viewAll=true and ?userId=N; the caller's role decides what is allowed.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.ListFilter{All: strings.EqualFold(q.Get("viewAll"), "true")}
	if raw := q.Get("userId"); raw != "" && !filter.All {
		id, err := parseID(raw, "userId")
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.OwnerID = &id
	}
	items, err := h.projects.List(r.Context(), actorOf(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.projects.Get(r.Context(), actorOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.projects.Create(r.Context(), actorOf(r).ID, projectInput(&req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.ProjectCreatedResponse{ID: p.ID, Message: "project created", Project: p})
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.ProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.projects.UpdateFields(r.Context(), actorOf(r), id, projectInput(&req)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "project updated"})
}

func (h *ProjectsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.projects.UpdateStatus(r.Context(), actorOf(r), id, models.Status(req.Status), req.Notes); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "status updated"})
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.projects.Delete(r.Context(), actorOf(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "project deleted"})
}

func (h *ProjectsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.projects.Timeline(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func projectInput(req *types.ProjectRequest) *services.ProjectInput {
	in := &services.ProjectInput{
		Title:        req.Title,
		Type:         req.Type,
		CustomerName: req.CustomerName,
		WriterName:   req.WriterName,
		Description:  req.Description,
		ClientPrice:  float64(req.ClientPrice),
		WriterPrice:  float64(req.WriterPrice),
	}
	if req.Deadline != nil {
		in.Deadline = *req.Deadline
	}
	return in
}


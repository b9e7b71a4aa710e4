package handlers

import (
	"net/http"

	"github.com/gigboard/engine/internal/api/types"
	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/services"
)

type ReferenceHandler struct {
	refs services.ReferenceService
}

func NewReferenceHandler(refs services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

func (h *ReferenceHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	items, err := h.refs.ListCustomers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReferenceHandler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	var req types.CustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c := &models.Customer{Name: req.Name, Contact: req.Contact, Company: req.Company}
	if err := h.refs.AddCustomer(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.MessageResponse{ID: c.ID, Message: "customer added"})
}

func (h *ReferenceHandler) ListWriters(w http.ResponseWriter, r *http.Request) {
	items, err := h.refs.ListWriters(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReferenceHandler) AddWriter(w http.ResponseWriter, r *http.Request) {
	var req types.WriterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	wr := &models.Writer{Name: req.Name, Specialty: req.Specialty, Contact: req.Contact, Rate: float64(req.Rate)}
	if err := h.refs.AddWriter(r.Context(), wr); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.MessageResponse{ID: wr.ID, Message: "writer added"})
}

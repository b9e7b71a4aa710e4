package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/gigboard/engine/internal/api/types"
	"github.com/gigboard/engine/pkg/logger"
)

type HealthHandler struct {
	ready func(ctx context.Context) error
}

// NewHealthHandler takes the store check used by readiness; nil means always ready.
func NewHealthHandler(ready func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ready: ready}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logger.Ctx(r.Context()).Warn("readiness check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, types.HealthResponse{Status: "unavailable", Error: "store unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ready"})
}

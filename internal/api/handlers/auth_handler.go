package handlers

import (
	"net/http"

	"github.com/gigboard/engine/internal/api/types"
	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/services"
)

type AuthHandler struct {
	users  services.UserService
	tokens services.TokenService
}

func NewAuthHandler(users services.UserService, tokens services.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.users.Register(r.Context(), req.Username, req.Password, models.Role(req.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.MessageResponse{ID: u.ID, Message: "registered"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, exp, err := h.tokens.Issue(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.LoginResponse{
		User:        u,
		Message:     "logged in",
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
	})
}

package types

import (
	"time"

	"github.com/gigboard/engine/internal/models"
)

// MessageResponse acknowledges a write. ID is set when a row was created.
type MessageResponse struct {
	ID      uint   `json:"id,omitempty"`
	Message string `json:"message"`
}

type LoginResponse struct {
	User        *models.User `json:"user"`
	Message     string       `json:"message"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// ProjectCreatedResponse returns the new id and the stored project.
type ProjectCreatedResponse struct {
	ID      uint            `json:"id"`
	Message string          `json:"message"`
	Project *models.Project `json:"project"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	Files    any    `json:"files"`
	Rejected any    `json:"rejected"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

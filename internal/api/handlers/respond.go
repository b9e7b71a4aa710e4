package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gigboard/engine/internal/api/middleware"
	"github.com/gigboard/engine/internal/api/types"
	"github.com/gigboard/engine/internal/api/validators"
	"github.com/gigboard/engine/internal/policy"
	appErr "github.com/gigboard/engine/pkg/errors"
	"github.com/gigboard/engine/pkg/logger"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with the status its code maps to. Server-side
// failures are logged with the underlying cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := appErr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, types.FromAppError(err))
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, false)
}

// decodeOptionalJSON is decodeJSON for patch-style requests where a missing
// body means "no fields".
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return appErr.New(appErr.CodeTooLarge, "request body too large")
		case errors.Is(err, io.EOF) && optional:
		case errors.Is(err, io.EOF):
			return appErr.New(appErr.CodeInvalid, "request body is required")
		default:
			return appErr.Wrap(err, appErr.CodeInvalid, "invalid json")
		}
	}
	if err := validators.New().Struct(dst); err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			parts = append(parts, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (uint, error) {
	return parseID(chi.URLParam(r, name), name)
}

func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, appErr.Newf(appErr.CodeInvalid, "invalid %s", name)
	}
	return uint(id), nil
}

// actorOf returns the caller placed in context by the auth middleware.
func actorOf(r *http.Request) policy.Actor {
	a, _ := middleware.ActorFrom(r.Context())
	return a
}

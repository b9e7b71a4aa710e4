package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gigboard/engine/internal/api/types"
	"github.com/gigboard/engine/internal/services"
	appErr "github.com/gigboard/engine/pkg/errors"
	"github.com/gigboard/engine/pkg/logger"
)

// multipartMemory is how much of a multipart body is kept in memory before spilling to temp files.
const multipartMemory = 32 << 20

type FilesHandler struct {
	files       services.AttachmentService
	maxFileSize int64
	maxFiles    int
}

func NewFilesHandler(files services.AttachmentService, maxFileSize int64, maxFiles int) *FilesHandler {
	return &FilesHandler{files: files, maxFileSize: maxFileSize, maxFiles: maxFiles}
}

// Upload accepts multipart field "files" and an optional "projectId".
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxFiles)*h.maxFileSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, appErr.New(appErr.CodeTooLarge, "upload too large"))
			return
		}
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "invalid multipart form"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Ctx(r.Context()).Warn("remove multipart temp files failed", zap.Error(err))
		}
	}()

	var projectID *uint
	if raw := strings.TrimSpace(r.FormValue("projectId")); raw != "" {
		id, err := parseID(raw, "projectId")
		if err != nil {
			writeError(w, r, err)
			return
		}
		projectID = &id
	}

	headers := r.MultipartForm.File["files"]
	uploads := make([]services.Upload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "read upload failed"))
			return
		}
		opened = append(opened, f)
		uploads = append(uploads, services.Upload{OriginalName: fh.Filename, Body: f})
	}

	res, err := h.files.Upload(r.Context(), projectID, uploads)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.UploadResponse{Message: "files uploaded", Files: res.Stored, Rejected: res.Rejected})
}

func (h *FilesHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	files, err := h.files.ListForProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.files.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "file deleted"})
}

package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/repository"
	"github.com/gigboard/engine/internal/storage"
	appErr "github.com/gigboard/engine/pkg/errors"
	"github.com/gigboard/engine/pkg/logger"
)

// sniffLen is how much of each payload is read to detect its content type.
const sniffLen = 3072

// allowedTypes maps each accepted extension to the content types it may sniff as.
var allowedTypes = map[string][]string{
	"jpeg": {"image/jpeg"},
	"jpg":  {"image/jpeg"},
	"png":  {"image/png"},
	"gif":  {"image/gif"},
	"pdf":  {"application/pdf"},
	"doc":  {"application/msword", "application/x-ole-storage"},
	"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	"txt":  {"text/plain"},
}

type AttachmentService interface {
	// Upload stores each file independently. A nil projectID stores payloads
	// without metadata rows. It fails only when no file could be stored.
	Upload(ctx context.Context, projectID *uint, files []Upload) (*UploadResult, error)
	ListForProject(ctx context.Context, projectID uint) ([]models.ProjectFile, error)
	Delete(ctx context.Context, fileID uint) error
}

// Upload is one incoming file.
type Upload struct {
	OriginalName string
	Body         io.Reader
}

// StoredFile describes an accepted upload.
type StoredFile struct {
	ID           *uint  `json:"id,omitempty"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	FilePath     string `json:"filePath"`
	FileType     string `json:"fileType"`
	FileSize     int64  `json:"fileSize"`
	Checksum     string `json:"checksum"`
}

// RejectedFile describes an upload that was not stored.
type RejectedFile struct {
	OriginalName string      `json:"originalName"`
	Error        string      `json:"error"`
	Code         appErr.Code `json:"code"`

	err error
}

type UploadResult struct {
	Stored   []StoredFile
	Rejected []RejectedFile
}

// UploadLimits bounds a single upload request.
type UploadLimits struct {
	MaxFileSize int64
	MaxFiles    int
}

type attachmentService struct {
	fileRepo    repository.FileRepository
	projectRepo repository.ProjectRepository
	store       storage.Store
	limits      UploadLimits
}

func NewAttachmentService(fileRepo repository.FileRepository, projectRepo repository.ProjectRepository, store storage.Store, limits UploadLimits) AttachmentService {
	return &attachmentService{fileRepo: fileRepo, projectRepo: projectRepo, store: store, limits: limits}
}

var _ AttachmentService = (*attachmentService)(nil)

func (s *attachmentService) Upload(ctx context.Context, projectID *uint, files []Upload) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "no files were uploaded")
	}
	if s.limits.MaxFiles > 0 && len(files) > s.limits.MaxFiles {
		return nil, appErr.Newf(appErr.CodeInvalid, "at most %d files can be uploaded at once", s.limits.MaxFiles)
	}
	if projectID != nil {
		ok, err := s.projectRepo.Exists(ctx, *projectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, appErr.New(appErr.CodeNotFound, "project not found")
		}
	}

	log := logger.Ctx(ctx)
	res := &UploadResult{Stored: []StoredFile{}, Rejected: []RejectedFile{}}
	for _, f := range files {
		stored, err := s.storeOne(ctx, projectID, f)
		if err != nil {
			log.Warn("attachment rejected", zap.String("original_name", f.OriginalName), zap.Error(err))
			res.Rejected = append(res.Rejected, RejectedFile{
				OriginalName: f.OriginalName,
				Error:        appErr.Message(err),
				Code:         appErr.CodeOf(err),
				err:          err,
			})
			continue
		}
		log.Info("attachment stored",
			zap.String("filename", stored.Filename),
			zap.String("type", stored.FileType),
			zap.String("size", humanize.IBytes(uint64(stored.FileSize))))
		res.Stored = append(res.Stored, *stored)
	}
	if len(res.Stored) == 0 {
		return nil, res.Rejected[0].err
	}
	return res, nil
}

func (s *attachmentService) storeOne(ctx context.Context, projectID *uint, f Upload) (*StoredFile, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.OriginalName), "."))
	accepted, ok := allowedTypes[ext]
	if !ok {
		return nil, appErr.Newf(appErr.CodeUnsupportedType, "%s: only images and documents can be uploaded", f.OriginalName)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "read upload failed")
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if !matchesAny(detected, accepted) {
		return nil, appErr.Newf(appErr.CodeUnsupportedType, "%s: content does not match its .%s extension", f.OriginalName, ext)
	}

	name := uuid.NewString() + "." + ext
	saved, err := s.store.Save(ctx, name, io.MultiReader(bytes.NewReader(head), f.Body), s.limits.MaxFileSize)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErr.Newf(appErr.CodeTooLarge, "%s: file exceeds the %s limit", f.OriginalName, humanize.IBytes(uint64(s.limits.MaxFileSize)))
		}
		return nil, appErr.Wrap(err, appErr.CodeStore, "store upload failed")
	}

	out := &StoredFile{
		Filename:     saved.Name,
		OriginalName: f.OriginalName,
		FilePath:     s.store.URL(saved.Name),
		FileType:     detected.String(),
		FileSize:     saved.Size,
		Checksum:     saved.Checksum,
	}
	if projectID == nil {
		return out, nil
	}
	row := &models.ProjectFile{
		ProjectID:    *projectID,
		Filename:     out.Filename,
		OriginalName: out.OriginalName,
		FilePath:     out.FilePath,
		FileType:     out.FileType,
		FileSize:     out.FileSize,
		Checksum:     out.Checksum,
	}
	if err := s.fileRepo.Create(ctx, row); err != nil {
		if rmErr := s.store.Remove(saved.Name); rmErr != nil {
			logger.Ctx(ctx).Warn("remove orphaned payload failed", zap.String("filename", saved.Name), zap.Error(rmErr))
		}
		return nil, err
	}
	out.ID = &row.ID
	return out, nil
}

// matchesAny walks the detected type and its parents, so a JSON body still counts as text.
func matchesAny(detected *mimetype.MIME, accepted []string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, a := range accepted {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}

func (s *attachmentService) ListForProject(ctx context.Context, projectID uint) ([]models.ProjectFile, error) {
	return s.fileRepo.ListByProject(ctx, projectID)
}

func (s *attachmentService) Delete(ctx context.Context, fileID uint) error {
	var f models.ProjectFile
	if err := s.fileRepo.GetByID(ctx, fileID, &f); err != nil {
		return err
	}
	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return err
	}
	if err := s.store.Remove(f.Filename); err != nil {
		logger.Ctx(ctx).Warn("remove attachment payload failed", zap.Uint("file_id", fileID), zap.String("filename", f.Filename), zap.Error(err))
	}
	logger.Ctx(ctx).Info("attachment deleted", zap.Uint("file_id", fileID))
	return nil
}

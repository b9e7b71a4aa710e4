package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/policy"
	"github.com/gigboard/engine/internal/repository"
	appErr "github.com/gigboard/engine/pkg/errors"
	"github.com/gigboard/engine/pkg/logger"
)

type NoteService interface {
	List(ctx context.Context, projectID uint) ([]models.ProjectNote, error)
	Add(ctx context.Context, projectID uint, content string, createdBy uint) (*models.ProjectNote, error)
	Delete(ctx context.Context, actor policy.Actor, projectID, noteID uint) error
}

type noteService struct {
	noteRepo    repository.NoteRepository
	projectRepo repository.ProjectRepository
}

func NewNoteService(noteRepo repository.NoteRepository, projectRepo repository.ProjectRepository) NoteService {
	return &noteService{noteRepo: noteRepo, projectRepo: projectRepo}
}

var _ NoteService = (*noteService)(nil)

func (s *noteService) List(ctx context.Context, projectID uint) ([]models.ProjectNote, error) {
	return s.noteRepo.ListByProject(ctx, projectID)
}

func (s *noteService) Add(ctx context.Context, projectID uint, content string, createdBy uint) (*models.ProjectNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, appErr.New(appErr.CodeInvalid, "note content is required")
	}
	if createdBy == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "creator is required")
	}
	ok, err := s.projectRepo.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErr.New(appErr.CodeNotFound, "project not found")
	}
	n := &models.ProjectNote{ProjectID: projectID, Content: content, CreatedBy: createdBy}
	if err := s.noteRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info("note added", zap.Uint("project_id", projectID), zap.Uint("note_id", n.ID))
	return n, nil
}

func (s *noteService) Delete(ctx context.Context, actor policy.Actor, projectID, noteID uint) error {
	n, err := s.noteRepo.DeleteScoped(ctx, projectID, noteID, policy.OwnerScope(actor))
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.noteRepo.GetInProject(ctx, projectID, noteID); err != nil {
			return err
		}
		return appErr.New(appErr.CodeForbidden, "you can only delete your own notes")
	}
	logger.Ctx(ctx).Info("note deleted", zap.Uint("project_id", projectID), zap.Uint("note_id", noteID))
	return nil
}

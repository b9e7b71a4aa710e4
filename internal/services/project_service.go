package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/policy"
	"github.com/gigboard/engine/internal/repository"
	"github.com/gigboard/engine/internal/storage"
	appErr "github.com/gigboard/engine/pkg/errors"
	"github.com/gigboard/engine/pkg/logger"
)

type ProjectService interface {
	List(ctx context.Context, actor policy.Actor, filter ListFilter) ([]models.Project, error)
	Get(ctx context.Context, actor policy.Actor, projectID uint) (*models.Project, error)
	Create(ctx context.Context, creatorID uint, input *ProjectInput) (*models.Project, error)
	UpdateStatus(ctx context.Context, actor policy.Actor, projectID uint, status models.Status, notes *string) error
	UpdateFields(ctx context.Context, actor policy.Actor, projectID uint, input *ProjectInput) error
	Delete(ctx context.Context, actor policy.Actor, projectID uint) error
	Timeline(ctx context.Context, projectID uint) ([]models.TimelineEntry, error)
}

// ProjectInput carries the editable project fields. Any status the caller
// sent is not part of it.
type ProjectInput struct {
	Title        string
	Type         string
	CustomerName *string
	WriterName   *string
	Description  *string
	// Deadline is a calendar date (2006-01-02) or an RFC 3339 timestamp; empty clears it.
	Deadline    string
	ClientPrice float64
	WriterPrice float64
}

// ListFilter selects whose projects to list. The zero value means "default for the actor".
type ListFilter struct {
	All     bool
	OwnerID *uint
}

type projectService struct {
	projectRepo repository.ProjectRepository
	store       storage.Store
}

func NewProjectService(projectRepo repository.ProjectRepository, store storage.Store) ProjectService {
	return &projectService{projectRepo: projectRepo, store: store}
}

// Ensure interfaces are satisfied at compile time
var _ ProjectService = (*projectService)(nil)

func (s *projectService) List(ctx context.Context, actor policy.Actor, filter ListFilter) ([]models.Project, error) {
	owner, err := resolveListOwner(actor, filter)
	if err != nil {
		return nil, err
	}
	return s.projectRepo.List(ctx, owner)
}

func resolveListOwner(actor policy.Actor, filter ListFilter) (*uint, error) {
	if actor.IsSuperadmin() {
		if filter.All {
			return nil, nil
		}
		return filter.OwnerID, nil
	}
	if filter.All {
		return nil, appErr.New(appErr.CodeForbidden, "only the superadmin can list all projects")
	}
	if filter.OwnerID != nil && *filter.OwnerID != actor.ID {
		return nil, appErr.New(appErr.CodeForbidden, "you can only list your own projects")
	}
	return policy.OwnerScope(actor), nil
}

func (s *projectService) Get(ctx context.Context, actor policy.Actor, projectID uint) (*models.Project, error) {
	p, err := s.projectRepo.GetWithCreator(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(actor.Role, actor.ID, p.CreatedBy) {
		return nil, appErr.New(appErr.CodeForbidden, "you can only view your own projects")
	}
	return p, nil
}

func (s *projectService) Create(ctx context.Context, creatorID uint, input *ProjectInput) (*models.Project, error) {
	if creatorID == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "creator is required")
	}
	fields, err := normalizeProject(input)
	if err != nil {
		return nil, err
	}
	p := &models.Project{
		Title:        fields.Title,
		Type:         fields.Type,
		CustomerName: fields.CustomerName,
		WriterName:   fields.WriterName,
		Description:  fields.Description,
		Deadline:     fields.Deadline,
		ClientPrice:  fields.ClientPrice,
		WriterPrice:  fields.WriterPrice,
		Status:       models.StatusPending,
		CreatedBy:    creatorID,
	}
	if err := s.projectRepo.CreateWithTimeline(ctx, p); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info("project created", zap.Uint("project_id", p.ID), zap.Uint("created_by", creatorID))
	return s.projectRepo.GetWithCreator(ctx, p.ID)
}

func (s *projectService) UpdateStatus(ctx context.Context, actor policy.Actor, projectID uint, status models.Status, notes *string) error {
	if !status.Valid() {
		return appErr.Newf(appErr.CodeInvalid, "unknown status %q", status)
	}
	if err := s.projectRepo.UpdateStatus(ctx, projectID, status, trimmedOrNil(notes)); err != nil {
		return err
	}
	logger.Ctx(ctx).Info("project status changed",
		zap.Uint("project_id", projectID),
		zap.String("status", string(status)),
		zap.Uint("actor_id", actor.ID))
	return nil
}

func (s *projectService) UpdateFields(ctx context.Context, actor policy.Actor, projectID uint, input *ProjectInput) error {
	fields, err := normalizeProject(input)
	if err != nil {
		return err
	}
	n, err := s.projectRepo.UpdateFields(ctx, projectID, policy.OwnerScope(actor), *fields)
	if err != nil {
		return err
	}
	if n == 0 {
		exists, err := s.projectRepo.Exists(ctx, projectID)
		if err != nil {
			return err
		}
		if !exists {
			return appErr.New(appErr.CodeNotFound, "project not found")
		}
		return appErr.New(appErr.CodeForbidden, "you can only modify your own projects")
	}
	logger.Ctx(ctx).Info("project updated", zap.Uint("project_id", projectID), zap.Uint("actor_id", actor.ID))
	return nil
}

func (s *projectService) Delete(ctx context.Context, actor policy.Actor, projectID uint) error {
	files, err := s.projectRepo.DeleteCascade(ctx, projectID, func(p *models.Project) error {
		if !policy.CanModify(actor.Role, actor.ID, p.CreatedBy) {
			return appErr.New(appErr.CodeForbidden, "you can only delete your own projects")
		}
		return nil
	})
	if err != nil {
		return err
	}
	log := logger.Ctx(ctx)
	for _, f := range files {
		if err := s.store.Remove(f.Filename); err != nil {
			log.Warn("remove attachment payload failed",
				zap.Uint("project_id", projectID),
				zap.String("filename", f.Filename),
				zap.Error(err))
		}
	}
	log.Info("project deleted",
		zap.Uint("project_id", projectID),
		zap.Uint("actor_id", actor.ID),
		zap.Int("files", len(files)))
	return nil
}

func (s *projectService) Timeline(ctx context.Context, projectID uint) ([]models.TimelineEntry, error) {
	return s.projectRepo.Timeline(ctx, projectID)
}

func normalizeProject(in *ProjectInput) (*repository.ProjectFields, error) {
	if in == nil {
		return nil, appErr.New(appErr.CodeInvalid, "project data is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, appErr.New(appErr.CodeInvalid, "title is required")
	}
	if in.ClientPrice < 0 || in.WriterPrice < 0 {
		return nil, appErr.New(appErr.CodeInvalid, "prices cannot be negative")
	}
	deadline, err := parseDeadline(in.Deadline)
	if err != nil {
		return nil, err
	}
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = models.DefaultProjectType
	}
	return &repository.ProjectFields{
		Title:        title,
		Type:         typ,
		CustomerName: trimmedOrNil(in.CustomerName),
		WriterName:   trimmedOrNil(in.WriterName),
		Description:  trimmedOrNil(in.Description),
		Deadline:     deadline,
		ClientPrice:  in.ClientPrice,
		WriterPrice:  in.WriterPrice,
	}, nil
}

func parseDeadline(v string) (*datatypes.Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			d := datatypes.Date(t)
			return &d, nil
		}
	}
	return nil, appErr.Newf(appErr.CodeInvalid, "invalid deadline %q", v)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

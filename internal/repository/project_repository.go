package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/models"
	appErr "github.com/gigboard/engine/pkg/errors"
)

// ProjectFields are the user-editable columns of a project. Status is not one of them.
type ProjectFields struct {
	Title        string
	Type         string
	CustomerName *string
	WriterName   *string
	Description  *string
	Deadline     *datatypes.Date
	ClientPrice  float64
	WriterPrice  float64
}

type ProjectRepository interface {
	// CreateWithTimeline inserts the project and its opening timeline entry together.
	CreateWithTimeline(ctx context.Context, p *models.Project) error
	// List returns projects newest first with the creator's username. A nil
	// ownerID lists every project.
	List(ctx context.Context, ownerID *uint) ([]models.Project, error)
	GetWithCreator(ctx context.Context, id uint) (*models.Project, error)
	Exists(ctx context.Context, id uint) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status models.Status, notes *string) error
	// UpdateFields overwrites the editable columns of a project owned by
	// ownerID (any owner when nil) and returns the rows affected.
	UpdateFields(ctx context.Context, id uint, ownerID *uint, f ProjectFields) (int64, error)
	// DeleteCascade removes the project and its dependents in one transaction.
	// authorize runs on the current row before anything is removed. The
	// removed file rows are returned so their payloads can be cleaned up.
	DeleteCascade(ctx context.Context, id uint, authorize func(*models.Project) error) ([]models.ProjectFile, error)
	Timeline(ctx context.Context, projectID uint) ([]models.TimelineEntry, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) withCreator(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Select("projects.*, users.username AS creator_name").
		Joins("LEFT JOIN users ON users.id = projects.created_by")
}

func (r *projectRepository) CreateWithTimeline(ctx context.Context, p *models.Project) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Creator").Create(p).Error; err != nil {
			return createError(err, "project")
		}
		entry := models.TimelineEntry{ProjectID: p.ID, Status: p.Status}
		if err := tx.Create(&entry).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeStore, "record timeline failed")
		}
		return nil
	})
	return err
}

func (r *projectRepository) List(ctx context.Context, ownerID *uint) ([]models.Project, error) {
	q := r.withCreator(ctx)
	if ownerID != nil {
		q = q.Where("projects.created_by = ?", *ownerID)
	}
	out := make([]models.Project, 0)
	if err := q.Order("projects.created_at DESC, projects.id DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeStore, "list projects failed")
	}
	return out, nil
}

func (r *projectRepository) GetWithCreator(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := r.withCreator(ctx).Where("projects.id = ?", id).Take(&p).Error; err != nil {
		return nil, notFoundOr(err, "project")
	}
	return &p, nil
}

func (r *projectRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, appErr.Wrap(err, appErr.CodeStore, "lookup project failed")
	}
	return n > 0, nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id uint, status models.Status, notes *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).Where("id = ?", id).Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return appErr.Wrap(res.Error, appErr.CodeStore, "update project status failed")
		}
		if res.RowsAffected == 0 {
			return appErr.New(appErr.CodeNotFound, "project not found")
		}
		entry := models.TimelineEntry{ProjectID: id, Status: status, Notes: notes}
		if err := tx.Create(&entry).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeStore, "record timeline failed")
		}
		return nil
	})
}

func (r *projectRepository) UpdateFields(ctx context.Context, id uint, ownerID *uint, f ProjectFields) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id)
	if ownerID != nil {
		q = q.Where("created_by = ?", *ownerID)
	}
	res := q.Updates(map[string]any{
		"title":         f.Title,
		"type":          f.Type,
		"customer_name": f.CustomerName,
		"writer_name":   f.WriterName,
		"description":   f.Description,
		"deadline":      f.Deadline,
		"client_price":  f.ClientPrice,
		"writer_price":  f.WriterPrice,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return 0, appErr.Wrap(res.Error, appErr.CodeStore, "update project failed")
	}
	return res.RowsAffected, nil
}

func (r *projectRepository) DeleteCascade(ctx context.Context, id uint, authorize func(*models.Project) error) ([]models.ProjectFile, error) {
	var files []models.ProjectFile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Project
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "project")
		}
		if authorize != nil {
			if err := authorize(&p); err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Find(&files).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeStore, "list project files failed")
		}
		for _, dep := range []any{&models.ProjectFile{}, &models.TimelineEntry{}, &models.ProjectNote{}} {
			if err := tx.Where("project_id = ?", id).Delete(dep).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeStore, "delete project dependents failed")
			}
		}
		res := tx.Delete(&models.Project{}, "id = ?", id)
		if res.Error != nil {
			return appErr.Wrap(res.Error, appErr.CodeStore, "delete project failed")
		}
		if res.RowsAffected == 0 {
			return appErr.New(appErr.CodeNotFound, "project not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *projectRepository) Timeline(ctx context.Context, projectID uint) ([]models.TimelineEntry, error) {
	out := make([]models.TimelineEntry, 0)
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeStore, "list timeline failed")
	}
	return out, nil
}

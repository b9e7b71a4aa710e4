package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/models"
	appErr "github.com/gigboard/engine/pkg/errors"
)

type NoteRepository interface {
	BaseRepository[models.ProjectNote]
	// ListByProject returns the project's notes newest first with the author's username.
	ListByProject(ctx context.Context, projectID uint) ([]models.ProjectNote, error)
	GetInProject(ctx context.Context, projectID, noteID uint) (*models.ProjectNote, error)
	// DeleteScoped removes the note if it belongs to projectID and, when
	// ownerID is set, was written by that user. It returns the rows affected.
	DeleteScoped(ctx context.Context, projectID, noteID uint, ownerID *uint) (int64, error)
}

type noteRepository struct {
	BaseRepository[models.ProjectNote]
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{BaseRepository: NewBaseRepository[models.ProjectNote](db, "note"), db: db}
}

func (r *noteRepository) ListByProject(ctx context.Context, projectID uint) ([]models.ProjectNote, error) {
	out := make([]models.ProjectNote, 0)
	err := r.db.WithContext(ctx).
		Model(&models.ProjectNote{}).
		Select("project_notes.*, users.username AS creator_name").
		Joins("LEFT JOIN users ON users.id = project_notes.created_by").
		Where("project_notes.project_id = ?", projectID).
		Order("project_notes.created_at DESC, project_notes.id DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeStore, "list notes failed")
	}
	return out, nil
}

func (r *noteRepository) GetInProject(ctx context.Context, projectID, noteID uint) (*models.ProjectNote, error) {
	var n models.ProjectNote
	if err := r.db.WithContext(ctx).Where("id = ? AND project_id = ?", noteID, projectID).First(&n).Error; err != nil {
		return nil, notFoundOr(err, "note")
	}
	return &n, nil
}

func (r *noteRepository) DeleteScoped(ctx context.Context, projectID, noteID uint, ownerID *uint) (int64, error) {
	q := r.db.WithContext(ctx).Where("id = ? AND project_id = ?", noteID, projectID)
	if ownerID != nil {
		q = q.Where("created_by = ?", *ownerID)
	}
	res := q.Delete(&models.ProjectNote{})
	if res.Error != nil {
		return 0, appErr.Wrap(res.Error, appErr.CodeStore, "delete note failed")
	}
	return res.RowsAffected, nil
}

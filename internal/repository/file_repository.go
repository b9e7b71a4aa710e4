package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/models"
	appErr "github.com/gigboard/engine/pkg/errors"
)

type FileRepository interface {
	BaseRepository[models.ProjectFile]
	ListByProject(ctx context.Context, projectID uint) ([]models.ProjectFile, error)
}

type fileRepository struct {
	BaseRepository[models.ProjectFile]
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{BaseRepository: NewBaseRepository[models.ProjectFile](db, "file"), db: db}
}

func (r *fileRepository) ListByProject(ctx context.Context, projectID uint) ([]models.ProjectFile, error) {
	out := make([]models.ProjectFile, 0)
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("uploaded_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeStore, "list files failed")
	}
	return out, nil
}

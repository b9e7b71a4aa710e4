package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/pkg/database"
	appErr "github.com/gigboard/engine/pkg/errors"
)

// UserChanges holds the columns of a partial user update. Nil means unchanged.
type UserChanges struct {
	Username     *string
	PasswordHash *string
	Role         *models.Role
}

func (c UserChanges) columns() map[string]any {
	cols := map[string]any{}
	if c.Username != nil {
		cols["username"] = *c.Username
	}
	if c.PasswordHash != nil {
		cols["password_hash"] = *c.PasswordHash
	}
	if c.Role != nil {
		cols["role"] = string(*c.Role)
	}
	return cols
}

type UserRepository interface {
	BaseRepository[models.User]
	GetByUsername(ctx context.Context, username string, dest *models.User) error
	List(ctx context.Context) ([]models.User, error)
	FindSuperadmin(ctx context.Context) (*models.User, error)
	CountProjectsOwned(ctx context.Context, userID uint) (int64, error)
	// UpdateUnprotected applies changes unless the row is the superadmin.
	// It returns the number of rows affected.
	UpdateUnprotected(ctx context.Context, id uint, changes UserChanges) (int64, error)
	// DeleteUnprotected removes the row unless it is the superadmin.
	DeleteUnprotected(ctx context.Context, id uint) (int64, error)
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db, "user"), db: db}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(dest).Error; err != nil {
		return notFoundOr(err, "user")
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	return r.ListOrdered(ctx, "created_at DESC, id DESC")
}

func (r *userRepository) FindSuperadmin(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("role = ?", models.RoleSuperadmin).First(&u).Error; err != nil {
		return nil, notFoundOr(err, "superadmin")
	}
	return &u, nil
}

func (r *userRepository) CountProjectsOwned(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Where("created_by = ?", userID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeStore, "count owned projects failed")
	}
	return n, nil
}

func (r *userRepository) UpdateUnprotected(ctx context.Context, id uint, changes UserChanges) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND role <> ?", id, models.RoleSuperadmin).
		Updates(changes.columns())
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return 0, appErr.Wrap(res.Error, appErr.CodeConflict, "username already exists")
		}
		return 0, appErr.Wrap(res.Error, appErr.CodeStore, "update user failed")
	}
	return res.RowsAffected, nil
}

func (r *userRepository) DeleteUnprotected(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND role <> ?", id, models.RoleSuperadmin).Delete(&models.User{})
	if res.Error != nil {
		return 0, appErr.Wrap(res.Error, appErr.CodeStore, "delete user failed")
	}
	return res.RowsAffected, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gigboard/engine/pkg/database"
	appErr "github.com/gigboard/engine/pkg/errors"
)

// BaseRepository defines common CRUD operations.
type BaseRepository[T any] interface {
	Create(ctx context.Context, obj *T) error
	GetByID(ctx context.Context, id any, dest *T) error
	ListOrdered(ctx context.Context, order string) ([]T, error)
	Delete(ctx context.Context, id any) error
}

type baseRepository[T any] struct {
	db   *gorm.DB
	name string
}

// NewBaseRepository builds the generic repository. name is used in error messages.
func NewBaseRepository[T any](db *gorm.DB, name string) BaseRepository[T] {
	return &baseRepository[T]{db: db, name: name}
}

func (r *baseRepository[T]) Create(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Create(obj).Error; err != nil {
		return createError(err, r.name)
	}
	return nil
}

func (r *baseRepository[T]) GetByID(ctx context.Context, id any, dest *T) error {
	if err := r.db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		return notFoundOr(err, r.name)
	}
	return nil
}

func (r *baseRepository[T]) ListOrdered(ctx context.Context, order string) ([]T, error) {
	out := make([]T, 0)
	if err := r.db.WithContext(ctx).Order(order).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeStore, fmt.Sprintf("list %ss failed", r.name))
	}
	return out, nil
}

func (r *baseRepository[T]) Delete(ctx context.Context, id any) error {
	var t T
	res := r.db.WithContext(ctx).Delete(&t, "id = ?", id)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeStore, fmt.Sprintf("delete %s failed", r.name))
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, fmt.Sprintf("%s not found", r.name))
	}
	return nil
}

func createError(err error, name string) error {
	if database.IsUniqueViolation(err) {
		return appErr.Wrap(err, appErr.CodeConflict, fmt.Sprintf("%s already exists", name))
	}
	return appErr.Wrap(err, appErr.CodeStore, fmt.Sprintf("create %s failed", name))
}

func notFoundOr(err error, name string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appErr.New(appErr.CodeNotFound, fmt.Sprintf("%s not found", name))
	}
	return appErr.Wrap(err, appErr.CodeStore, fmt.Sprintf("get %s failed", name))
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/models"
)

// ReferenceRepository serves the customer and writer lookup lists.
type ReferenceRepository interface {
	Customers() BaseRepository[models.Customer]
	Writers() BaseRepository[models.Writer]
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListWriters(ctx context.Context) ([]models.Writer, error)
}

type referenceRepository struct {
	customers BaseRepository[models.Customer]
	writers   BaseRepository[models.Writer]
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{
		customers: NewBaseRepository[models.Customer](db, "customer"),
		writers:   NewBaseRepository[models.Writer](db, "writer"),
	}
}

func (r *referenceRepository) Customers() BaseRepository[models.Customer] { return r.customers }
func (r *referenceRepository) Writers() BaseRepository[models.Writer]     { return r.writers }

func (r *referenceRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return r.customers.ListOrdered(ctx, "name ASC, id ASC")
}

func (r *referenceRepository) ListWriters(ctx context.Context) ([]models.Writer, error) {
	return r.writers.ListOrdered(ctx, "name ASC, id ASC")
}

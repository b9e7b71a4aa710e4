package services

import (
	"context"
	"math"
	"strings"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/repository"
	appErr "github.com/gigboard/engine/pkg/errors"
)

// ReferenceService maintains the customer and writer lookup lists.
type ReferenceService interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	AddCustomer(ctx context.Context, c *models.Customer) error
	ListWriters(ctx context.Context) ([]models.Writer, error)
	AddWriter(ctx context.Context, w *models.Writer) error
}

type referenceService struct {
	repo repository.ReferenceRepository
}

func NewReferenceService(repo repository.ReferenceRepository) ReferenceService {
	return &referenceService{repo: repo}
}

func (s *referenceService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *referenceService) AddCustomer(ctx context.Context, c *models.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return appErr.New(appErr.CodeInvalid, "customer name is required")
	}
	return s.repo.Customers().Create(ctx, c)
}

func (s *referenceService) ListWriters(ctx context.Context) ([]models.Writer, error) {
	return s.repo.ListWriters(ctx)
}

func (s *referenceService) AddWriter(ctx context.Context, w *models.Writer) error {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return appErr.New(appErr.CodeInvalid, "writer name is required")
	}
	if math.IsNaN(w.Rate) || math.IsInf(w.Rate, 0) {
		return appErr.New(appErr.CodeInvalid, "rate must be a finite number")
	}
	if w.Rate < 0 {
		return appErr.New(appErr.CodeInvalid, "rate cannot be negative")
	}
	return s.repo.Writers().Create(ctx, w)
}

package invoices

import (
	"context"

	"github.com/angelmondragon/postoko-backend/internal/repo"
	"github.com/angelmondragon/postoko-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads invoices. Invoices are written by checkout, which lives
// outside this service.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns every invoice, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := r.DB(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var row models.Invoice
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByEmail returns the invoices recorded for email, newest first.
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := r.DB(ctx).Where("email = ?", email).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

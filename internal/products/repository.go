package product

import (
	"context"

	"github.com/angelmondragon/postoko-backend/internal/repo"
	"github.com/angelmondragon/postoko-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists products.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns every product, oldest first.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB(ctx).Order("created_at ASC").Order("name ASC").Find(&rows).Error
	return rows, err
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// InventoryExists reports whether the referenced inventory row is present.
func (r *Repository) InventoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Inventory{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// NameTaken reports whether a product other than exclude already uses name.
func (r *Repository) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	q := r.DB(ctx).Model(&models.Product{}).Where("name = ?", name)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Product) error {
	return r.DB(ctx).Create(row).Error
}

// Update writes the editable columns. The image column is written only when
// withImage is set.
func (r *Repository) Update(ctx context.Context, row *models.Product, withImage bool) error {
	columns := []string{"inventory_id", "name", "description", "price", "stock", "updated_at"}
	if withImage {
		columns = append(columns, "image")
	}
	return r.DB(ctx).Model(row).Select(columns).Updates(row).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

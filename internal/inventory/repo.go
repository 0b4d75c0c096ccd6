package inventory

import (
	"context"

	"github.com/angelmondragon/postoko-backend/internal/repo"
	"github.com/angelmondragon/postoko-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists inventories.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns every inventory, oldest first.
func (r *Repository) List(ctx context.Context) ([]models.Inventory, error) {
	var rows []models.Inventory
	err := r.DB(ctx).Order("created_at ASC").Order("name ASC").Find(&rows).Error
	return rows, err
}

// FindByID returns gorm.ErrRecordNotFound when no row matches.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error) {
	var row models.Inventory
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// NameTaken reports whether another inventory already uses name. A non-nil
// exclude ignores that row so an inventory can keep its own name.
func (r *Repository) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	q := r.DB(ctx).Model(&models.Inventory{}).Where("name = ?", name)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Inventory) error {
	return r.DB(ctx).Create(row).Error
}

// Update writes name and description.
func (r *Repository) Update(ctx context.Context, row *models.Inventory) error {
	return r.DB(ctx).
		Model(row).
		Select("name", "description", "updated_at").
		Updates(row).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Inventory{}).Error
}

// CountProducts returns how many products reference the inventory.
func (r *Repository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Product{}).Where("inventory_id = ?", id).Count(&count).Error
	return count, err
}

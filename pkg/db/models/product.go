package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product belongs to exactly one Inventory. Image holds the relative path of
// the stored upload.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	InventoryID uuid.UUID `gorm:"column:inventory_id;type:uuid;not null;index"`
	Name        string    `gorm:"type:text;not null;uniqueIndex"`
	Description string    `gorm:"type:text;not null;default:''"`
	Price       int64     `gorm:"not null;default:0"`
	Stock       int64     `gorm:"not null;default:0"`
	Image       *string   `gorm:"column:image"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

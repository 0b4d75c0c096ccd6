package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice records a completed checkout. Items is the serialized line list.
type Invoice struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	Email     string          `gorm:"type:text;not null;index"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Items     string          `gorm:"type:text;not null;default:'[]'"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

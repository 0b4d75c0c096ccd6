package inventory

import (
	"strings"
	"time"

	"github.com/angelmondragon/postoko-backend/pkg/db/models"
	"github.com/google/uuid"
)

// InventoryDTO is the JSON shape of an inventory.
type InventoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input is the body accepted by create and update.
type Input struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

func (in Input) normalized() Input {
	return Input{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
}

func FromModel(m *models.Inventory) *InventoryDTO {
	if m == nil {
		return nil
	}
	return &InventoryDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromModels(rows []models.Inventory) []InventoryDTO {
	out := make([]InventoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

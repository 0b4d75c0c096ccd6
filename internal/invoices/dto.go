package invoices

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/postoko-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceDTO is the JSON shape of an invoice. Items is passed through as the
// stored JSON document.
type InvoiceDTO struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Email     string          `json:"email"`
	Total     decimal.Decimal `json:"total"`
	Items     json.RawMessage `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
}

func FromModel(m *models.Invoice) *InvoiceDTO {
	if m == nil {
		return nil
	}
	items := json.RawMessage(m.Items)
	if !json.Valid(items) {
		items = json.RawMessage("[]")
	}
	return &InvoiceDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		Email:     m.Email,
		Total:     m.Total,
		Items:     items,
		CreatedAt: m.CreatedAt,
	}
}

func fromModels(rows []models.Invoice) []InvoiceDTO {
	out := make([]InvoiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

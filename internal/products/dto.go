package product

import (
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/postoko-backend/internal/media"
	"github.com/angelmondragon/postoko-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ProductDTO is the JSON shape of a product. Image is an absolute URL.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       int64     `json:"stock"`
	Image       *string   `json:"image"`
	InventoryID uuid.UUID `json:"inventoryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Form carries the multipart fields of a create or update request as received.
// Scalars stay unparsed so existence and uniqueness checks run first.
type Form struct {
	InventoryID string
	Name        string
	Description string
	Price       string
	Stock       string
	Image       *media.Upload
}

type fields struct {
	name        string
	description string
	price       int64
	stock       int64
}

// parse validates the scalar fields and reports every problem at once.
func (f Form) parse() (fields, map[string]string) {
	out := fields{
		name:        strings.TrimSpace(f.Name),
		description: strings.TrimSpace(f.Description),
	}
	problems := map[string]string{}

	if out.name == "" {
		problems["name"] = "name is required"
	}
	var ok bool
	if out.price, ok = parseNonNegative(f.Price); !ok {
		problems["price"] = "price must be a non-negative integer"
	}
	if out.stock, ok = parseNonNegative(f.Stock); !ok {
		problems["stock"] = "stock must be a non-negative integer"
	}

	if len(problems) > 0 {
		return fields{}, problems
	}
	return out, nil
}

func parseNonNegative(raw string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// FromModel converts a row, resolving the stored image path against baseURL.
func FromModel(p *models.Product, baseURL string) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Image:       media.PublicURL(baseURL, p.Image),
		InventoryID: p.InventoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

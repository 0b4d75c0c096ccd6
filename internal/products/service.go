package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/postoko-backend/internal/media"
	"github.com/angelmondragon/postoko-backend/internal/repo"
	"github.com/angelmondragon/postoko-backend/pkg/db"
	"github.com/angelmondragon/postoko-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
	"github.com/angelmondragon/postoko-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	productNotFoundMessage = "Product not found"
	imageRequiredMessage   = "Product image is required"
)

// Service exposes product management operations.
type Service interface {
	List(ctx context.Context, baseURL string) ([]ProductDTO, error)
	Get(ctx context.Context, rawID, baseURL string) (*ProductDTO, error)
	Create(ctx context.Context, form Form) (*ProductDTO, error)
	Update(ctx context.Context, rawID string, form Form) (*ProductDTO, error)
	Delete(ctx context.Context, rawID string) (*ProductDTO, error)
}

type imageStore interface {
	Save(ctx context.Context, up media.Upload) (string, error)
	Delete(ctx context.Context, stored string) error
}

// ServiceParams bundles the dependencies required to build a product service.
type ServiceParams struct {
	DB      *db.Client
	Images  imageStore
	Cleaner media.Remover
	// BaseURL resolves image paths in create and update responses.
	BaseURL string
	Logger  *logger.Logger
}

type service struct {
	repo    *Repository
	images  imageStore
	cleaner media.Remover
	baseURL string
	logg    *logger.Logger
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Images == nil {
		return nil, fmt.Errorf("image store required")
	}
	if params.Cleaner == nil {
		return nil, fmt.Errorf("image cleaner required")
	}
	return &service{
		repo:    NewRepository(params.DB.DB()),
		images:  params.Images,
		cleaner: params.Cleaner,
		baseURL: params.BaseURL,
		logg:    params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, baseURL string) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to get all products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], baseURL))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, rawID, baseURL string) (*ProductDTO, error) {
	id, ok := repo.ParseID(rawID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No product found")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No product found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to get product by id")
	}
	return FromModel(row, baseURL), nil
}

// Create checks the inventory, the name and the image before parsing the
// scalar fields. The image is written only after every check passes.
func (s *service) Create(ctx context.Context, form Form) (*ProductDTO, error) {
	const failed = "Failed to create product"

	inventoryID, err := s.ensureInventory(ctx, form.InventoryID, failed)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, form.Name, uuid.Nil, failed); err != nil {
		return nil, err
	}
	if form.Image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, imageRequiredMessage)
	}
	parsed, problems := form.parse()
	if problems != nil {
		return nil, invalidFields(problems)
	}

	stored, err := s.saveImage(ctx, *form.Image, failed)
	if err != nil {
		return nil, err
	}

	row := &models.Product{
		InventoryID: inventoryID,
		Name:        parsed.name,
		Description: parsed.description,
		Price:       parsed.price,
		Stock:       parsed.stock,
		Image:       &stored,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, s.discardImage(ctx, stored, writeError(parsed.name, err, failed))
	}
	return FromModel(row, s.baseURL), nil
}

// Update replaces every scalar field. The image is optional; a replaced image
// is removed in the background once the row points at the new one.
func (s *service) Update(ctx context.Context, rawID string, form Form) (*ProductDTO, error) {
	const failed = "Failed to Update"

	id, ok := repo.ParseID(rawID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, failed)
	}

	inventoryID, err := s.ensureInventory(ctx, form.InventoryID, failed)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, form.Name, id, failed); err != nil {
		return nil, err
	}
	parsed, problems := form.parse()
	if problems != nil {
		return nil, invalidFields(problems)
	}

	previous := row.Image
	row.InventoryID = inventoryID
	row.Name = parsed.name
	row.Description = parsed.description
	row.Price = parsed.price
	row.Stock = parsed.stock

	withImage := form.Image != nil
	var stored string
	if withImage {
		if stored, err = s.saveImage(ctx, *form.Image, failed); err != nil {
			return nil, err
		}
		row.Image = &stored
	}

	if err := s.repo.Update(ctx, row, withImage); err != nil {
		err = writeError(parsed.name, err, failed)
		if withImage {
			err = s.discardImage(ctx, stored, err)
		}
		return nil, err
	}

	if withImage && previous != nil && *previous != stored {
		s.cleaner.Remove(ctx, *previous)
	}
	return FromModel(row, s.baseURL), nil
}

// Delete removes the row, then schedules the image for deletion.
func (s *service) Delete(ctx context.Context, rawID string) (*ProductDTO, error) {
	const failed = "Delete failed"

	id, ok := repo.ParseID(rawID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, failed)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, failed)
	}
	if row.Image != nil {
		s.cleaner.Remove(ctx, *row.Image)
	}
	return FromModel(row, s.baseURL), nil
}

func (s *service) ensureInventory(ctx context.Context, raw, failed string) (uuid.UUID, error) {
	notFound := pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Inventory with id %s not found", raw))
	id, ok := repo.ParseID(raw)
	if !ok {
		return uuid.Nil, notFound
	}
	exists, err := s.repo.InventoryExists(ctx, id)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, failed)
	}
	if !exists {
		return uuid.Nil, notFound
	}
	return id, nil
}

func (s *service) ensureNameFree(ctx context.Context, rawName string, exclude uuid.UUID, failed string) error {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return nil
	}
	taken, err := s.repo.NameTaken(ctx, name, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, failed)
	}
	if taken {
		return conflict(name, nil)
	}
	return nil
}

func (s *service) saveImage(ctx context.Context, up media.Upload, failed string) (string, error) {
	stored, err := s.images.Save(ctx, up)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return "", err
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, failed)
	}
	return stored, nil
}

// discardImage removes a file whose row was never written and returns cause.
func (s *service) discardImage(ctx context.Context, stored string, cause error) error {
	if err := s.images.Delete(ctx, stored); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"image": stored,
			"error": err.Error(),
		}), "product.image_discard_failed")
	}
	return cause
}

func writeError(name string, err error, failed string) error {
	switch {
	case db.IsUniqueViolation(err):
		return conflict(name, err)
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Inventory not found")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, failed)
	}
}

func conflict(name string, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, fmt.Sprintf("%s already exists", name))
}

func invalidFields(problems map[string]string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "Invalid product fields").WithDetails(problems)
}

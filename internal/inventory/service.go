package inventory

import (
	"context"
	"fmt"

	"github.com/angelmondragon/postoko-backend/internal/repo"
	"github.com/angelmondragon/postoko-backend/pkg/db"
	"github.com/angelmondragon/postoko-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	idNotFoundMessage        = "Id not found"
	inventoryNotFoundMessage = "Inventory not found"
	inUseMessage             = "Inventory still has products"
)

// Service exposes inventory management operations.
type Service interface {
	List(ctx context.Context) ([]InventoryDTO, error)
	Get(ctx context.Context, rawID string) (*InventoryDTO, error)
	Create(ctx context.Context, input Input) (*InventoryDTO, error)
	Update(ctx context.Context, rawID string, input Input) (*InventoryDTO, error)
	Delete(ctx context.Context, rawID string) (*InventoryDTO, error)
}

type service struct {
	db   *db.Client
	repo *Repository
}

// NewService constructs an inventory service backed by dbClient.
func NewService(dbClient *db.Client) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{db: dbClient, repo: NewRepository(dbClient.DB())}, nil
}

func (s *service) List(ctx context.Context) ([]InventoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to get all inventory")
	}
	return fromModels(rows), nil
}

func (s *service) Get(ctx context.Context, rawID string) (*InventoryDTO, error) {
	id, ok := repo.ParseID(rawID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, idNotFoundMessage)
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, idNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to get inventory by id")
	}
	return FromModel(row), nil
}

func (s *service) Create(ctx context.Context, input Input) (*InventoryDTO, error) {
	input = input.normalized()
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	taken, err := s.repo.NameTaken(ctx, input.Name, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to create inventory")
	}
	if taken {
		return nil, conflict(input.Name, nil)
	}

	row := input.toModel()
	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, conflict(input.Name, err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to create inventory")
	}
	return FromModel(row), nil
}

func (s *service) Update(ctx context.Context, rawID string, input Input) (*InventoryDTO, error) {
	id, ok := repo.ParseID(rawID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, inventoryNotFoundMessage)
	}
	input = input.normalized()
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, inventoryNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to update inventory")
	}

	taken, err := s.repo.NameTaken(ctx, input.Name, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to update inventory")
	}
	if taken {
		return nil, conflict(input.Name, nil)
	}

	row.Name = input.Name
	row.Description = input.Description
	if err := s.repo.Update(ctx, row); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, conflict(input.Name, err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to update inventory")
	}
	return FromModel(row), nil
}

// Delete refuses to remove an inventory that products still reference.
func (s *service) Delete(ctx context.Context, rawID string) (*InventoryDTO, error) {
	id, ok := repo.ParseID(rawID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, inventoryNotFoundMessage)
	}

	var deleted *InventoryDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := NewRepository(tx)

		row, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, inventoryNotFoundMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to delete inventory")
		}

		count, err := txRepo.CountProducts(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to delete inventory")
		}
		if count > 0 {
			return inUse(count, nil)
		}

		if err := txRepo.Delete(ctx, id); err != nil {
			if db.IsForeignKeyViolation(err) {
				return inUse(count, err)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to delete inventory")
		}
		deleted = FromModel(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (in Input) toModel() *models.Inventory {
	return &models.Inventory{Name: in.Name, Description: in.Description}
}

func conflict(name string, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, fmt.Sprintf("%s already exists", name))
}

func inUse(products int64, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependencyExists, cause, inUseMessage).
		WithDetails(map[string]any{"products": products})
}

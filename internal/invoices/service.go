package invoices

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/postoko-backend/internal/repo"
	"github.com/angelmondragon/postoko-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
)

// Service exposes the invoice read paths.
type Service interface {
	List(ctx context.Context) ([]InvoiceDTO, error)
	Get(ctx context.Context, rawID string) (*InvoiceDTO, error)
	ListByEmail(ctx context.Context, email string) ([]InvoiceDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(dbClient *db.Client) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: NewRepository(dbClient.DB())}, nil
}

func (s *service) List(ctx context.Context) ([]InvoiceDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to get all invoice")
	}
	return fromModels(rows), nil
}

func (s *service) Get(ctx context.Context, rawID string) (*InvoiceDTO, error) {
	id, ok := repo.ParseID(rawID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Id not found")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Id not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to get invoice by id")
	}
	return FromModel(row), nil
}

// ListByEmail reports NOT_FOUND when the email has no invoices.
func (s *service) ListByEmail(ctx context.Context, email string) ([]InvoiceDTO, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	rows, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to get invoice by email")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s haven't checkout yet", email))
	}
	return fromModels(rows), nil
}

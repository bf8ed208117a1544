package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/azizbkh/boutique-client/internal/session"
	"github.com/azizbkh/boutique-client/pkg/api"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
	"github.com/azizbkh/boutique-client/pkg/validate"
)

// API is the write surface for catalog administration.
type API interface {
	CreateProduct(ctx context.Context, input api.ProductInput) (*api.Product, error)
	UpdateProduct(ctx context.Context, productID string, input api.ProductInput) (*api.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	CreateCategory(ctx context.Context, input api.CategoryInput) (*api.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, input api.CategoryInput) (*api.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

type sessionSource interface {
	Current() (*session.Session, error)
}

// Service performs product and category management on behalf of an
// administrator.
type Service struct {
	api      API
	sessions sessionSource
	logger   *logger.Logger
}

func NewService(client API, sessions sessionSource, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("api client required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{api: client, sessions: sessions, logger: logg}, nil
}

func (s *Service) requireAdmin() error {
	current, err := s.sessions.Current()
	if err != nil {
		return err
	}
	if !current.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeNotAuthenticated, "admin role required")
	}
	return nil
}

// SaveProduct creates the product when productID is empty and updates it
// otherwise, mirroring the dashboard's single save action.
func (s *Service) SaveProduct(ctx context.Context, productID string, input api.ProductInput) (*api.Product, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	if strings.TrimSpace(productID) == "" {
		product, err := s.api.CreateProduct(ctx, input)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "creating product")
		}
		s.logger.Info(ctx, "product created")
		return product, nil
	}

	product, err := s.api.UpdateProduct(ctx, productID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "updating product")
	}
	s.logger.Info(ctx, "product updated")
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.api.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "deleting product")
	}
	return nil
}

// SaveCategory creates or updates a category, keyed on whether categoryID is
// empty.
func (s *Service) SaveCategory(ctx context.Context, categoryID string, input api.CategoryInput) (*api.Category, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	if strings.TrimSpace(categoryID) == "" {
		category, err := s.api.CreateCategory(ctx, input)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "creating category")
		}
		return category, nil
	}

	category, err := s.api.UpdateCategory(ctx, categoryID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "updating category")
	}
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if strings.TrimSpace(categoryID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if err := s.api.DeleteCategory(ctx, categoryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "deleting category")
	}
	return nil
}

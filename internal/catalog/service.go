package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/azizbkh/boutique-client/pkg/api"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
)

// API is the transport surface the catalog needs.
type API interface {
	ListCategories(ctx context.Context) ([]api.Category, error)
	ListProducts(ctx context.Context) ([]api.Product, error)
	GetProduct(ctx context.Context, productID string) (*api.Product, error)
	GetCart(ctx context.Context, userID string) (*api.Cart, error)
	CreateCart(ctx context.Context, draft api.CartDraft) (*api.Cart, error)
	UpdateCart(ctx context.Context, cartID string, update api.CartUpdate) (*api.Cart, error)
}

// Catalog is the storefront's browse view.
type Catalog struct {
	Categories []api.Category
	Products   []api.Product
}

// Service serves category/product browsing and the add-to-cart flow.
type Service struct {
	api    API
	logger *logger.Logger

	// serializes cart writes per user; racing add-to-cart calls could both
	// read the pre-mutation cart and lose an item
	mu sync.Mutex
}

func NewService(client API, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("api client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{api: client, logger: logg}, nil
}

// Browse fetches the full catalog.
func (s *Service) Browse(ctx context.Context) (*Catalog, error) {
	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeLoadFailed, err, "fetching categories")
	}
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeLoadFailed, err, "fetching products")
	}
	return &Catalog{Categories: categories, Products: products}, nil
}

// ProductsByCategory filters the product list client-side, matching the
// storefront's behavior of reusing the already-fetched catalog.
func (s *Service) ProductsByCategory(ctx context.Context, categoryID string) ([]api.Product, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeLoadFailed, err, "fetching products")
	}
	if strings.TrimSpace(categoryID) == "" {
		return products, nil
	}
	filtered := make([]api.Product, 0, len(products))
	for _, product := range products {
		if product.CategoryID == categoryID {
			filtered = append(filtered, product)
		}
	}
	return filtered, nil
}

// AddToCart appends one unit of the product to the user's cart, creating the
// cart on first use. The unit price comes from the product record, not the
// caller.
func (s *Service) AddToCart(ctx context.Context, userID, productID string) (*api.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotAuthenticated, "sign in to add items to your cart")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.api.GetProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "fetching product")
	}

	ctx = s.logger.WithUserID(ctx, userID)
	existing, err := s.api.GetCart(ctx, userID)
	if err != nil && !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "fetching cart")
	}

	if existing == nil {
		cart, err := s.api.CreateCart(ctx, api.CartDraft{
			OwnerID: userID,
			Items:   []string{product.ID},
			Total:   product.Price,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "creating cart")
		}
		s.logger.Debug(ctx, "cart created with first item")
		return cart, nil
	}

	update := api.CartUpdate{
		Items: append(append([]string(nil), existing.Items...), product.ID),
		Total: existing.Total.Add(product.Price),
	}
	cart, err := s.api.UpdateCart(ctx, existing.ID, update)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "adding cart item")
	}
	s.logger.Debug(ctx, "cart item added")
	return cart, nil
}

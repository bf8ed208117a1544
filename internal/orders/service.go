package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/azizbkh/boutique-client/internal/cart"
	"github.com/azizbkh/boutique-client/pkg/api"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
)

const maxConcurrentProductFetches = 8

// API is the transport surface the order service needs.
type API interface {
	ListOrders(ctx context.Context) ([]api.Order, error)
	GetProduct(ctx context.Context, productID string) (*api.Product, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status api.OrderStatus) (*api.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

// HydratedOrder pairs an order with the detail of every distinct product it
// references, for display.
type HydratedOrder struct {
	Order    api.Order
	Products map[string]api.Product
	Counts   map[string]int
}

// Service serves order history for customers and validation/deletion for
// administrators.
type Service struct {
	api    API
	logger *logger.Logger
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

// ListMine returns the orders owned by the given user.
func (s *Service) ListMine(ctx context.Context, userID string) ([]api.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotAuthenticated, "sign in to view your orders")
	}
	all, err := s.api.ListOrders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeLoadFailed, err, "fetching orders")
	}
	mine := make([]api.Order, 0, len(all))
	for _, order := range all {
		if order.OwnerID == userID {
			mine = append(mine, order)
		}
	}
	return mine, nil
}

// ListAll returns every order, for the admin dashboard.
func (s *Service) ListAll(ctx context.Context) ([]api.Order, error) {
	all, err := s.api.ListOrders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeLoadFailed, err, "fetching orders")
	}
	return all, nil
}

// Hydrate fetches product details for an order, one request per distinct id,
// fail-fast like the cart loader.
func (s *Service) Hydrate(ctx context.Context, order api.Order) (*HydratedOrder, error) {
	counts := cart.CountItems(order.Items)

	var mu sync.Mutex
	products := make(map[string]api.Product, len(counts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProductFetches)
	for id := range counts {
		id := id
		g.Go(func() error {
			product, err := s.api.GetProduct(ctx, id)
			if err != nil {
				return fmt.Errorf("product %s: %w", id, err)
			}
			mu.Lock()
			products[id] = *product
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeLoadFailed, err, "fetching order products")
	}

	return &HydratedOrder{Order: order, Products: products, Counts: counts}, nil
}

// ToggleStatus flips an order between pending and validated and returns the
// server's record.
func (s *Service) ToggleStatus(ctx context.Context, orderID string, current api.OrderStatus) (*api.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !current.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", current))
	}
	updated, err := s.api.UpdateOrderStatus(ctx, orderID, current.Toggled())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "updating order status")
	}
	s.logger.Info(s.logger.WithField(ctx, "order_id", orderID), "order status updated")
	return updated, nil
}

// Delete removes an order entirely.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if err := s.api.DeleteOrder(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "deleting order")
	}
	return nil
}

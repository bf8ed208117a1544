package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/azizbkh/boutique-client/pkg/api"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
)

// MutatorAPI is the write surface the mutator needs from the transport.
type MutatorAPI interface {
	UpdateCart(ctx context.Context, cartID string, update api.CartUpdate) (*api.Cart, error)
	CreateOrder(ctx context.Context, draft api.OrderDraft, idempotencyKey string) (*api.Order, error)
	DeleteCart(ctx context.Context, cartID string) error
}

// Mutator applies removals and order placement against the server, keeping
// the attached view consistent with the authoritative record after each round
// trip. A mutex serializes operations per cart: two racing removals could
// otherwise both read the pre-mutation items and lose an update.
type Mutator struct {
	api    MutatorAPI
	logger *logger.Logger

	mu   sync.Mutex
	view *View
}

func NewMutator(client MutatorAPI, logg *logger.Logger) (*Mutator, error) {
	if client == nil {
		return nil, fmt.Errorf("api client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Mutator{api: client, logger: logg}, nil
}

// Attach hands the mutator the loader's output. It replaces any previous
// view wholesale.
func (m *Mutator) Attach(view *View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view = view
}

// View returns the current aggregate, or nil before Attach.
func (m *Mutator) View() *View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// RemoveOneUnit removes a single occurrence of the product from the cart.
// The total sent is an optimistic estimate (old total minus the cached unit
// price); on success the local state is replaced entirely by the server's
// echo. On failure local state is untouched and the call is retryable.
func (m *Mutator) RemoveOneUnit(ctx context.Context, productID string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.view == nil || m.view.Cart.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no cart loaded")
	}
	if m.view.Counts[productID] == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not in the cart")
	}
	product, ok := m.view.Products[productID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product detail missing from cart view")
	}

	items := removeFirst(m.view.Cart.Items, productID)
	estimate := m.view.Cart.Total.Sub(product.Price)

	ctx = m.logger.WithCartID(ctx, m.view.Cart.ID)
	updated, err := m.api.UpdateCart(ctx, m.view.Cart.ID, api.CartUpdate{Items: items, Total: estimate})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "removing cart item")
	}

	m.view.replaceFromServer(*updated)
	m.logger.Debug(ctx, "cart item removed")
	return m.view, nil
}

// PlaceOrder submits the cart as a pending order, then deletes the cart.
// The two requests are not a transaction: when the create succeeds but the
// delete fails, the error is PARTIAL_ORDER_COMPLETION, local state is kept,
// and the caller must not blindly retry since an order already exists.
func (m *Mutator) PlaceOrder(ctx context.Context) (*api.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.view == nil || m.view.Cart.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no cart loaded")
	}
	if len(m.view.Cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if m.view.Cart.OwnerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotAuthenticated, "cart has no owner")
	}

	ctx = m.logger.WithCartID(ctx, m.view.Cart.ID)
	draft := api.OrderDraft{
		OwnerID: m.view.Cart.OwnerID,
		Items:   m.view.Cart.Items,
		Total:   m.view.Cart.Total,
		Status:  api.OrderStatusPending,
	}

	order, err := m.api.CreateOrder(ctx, draft, uuid.NewString())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMutationRejected, err, "creating order")
	}

	if err := m.api.DeleteCart(ctx, m.view.Cart.ID); err != nil {
		m.logger.Error(ctx, "order created but cart not cleared", err)
		return order, pkgerrors.Wrap(pkgerrors.CodePartialOrder, err, "order created but cart not cleared").
			WithDetails(map[string]any{"order_id": order.ID})
	}

	owner := m.view.Cart.OwnerID
	m.view = emptyView(owner)
	m.logger.Info(ctx, "order placed, cart cleared")
	return order, nil
}

func removeFirst(items []string, productID string) []string {
	out := make([]string, 0, len(items))
	removed := false
	for _, id := range items {
		if !removed && id == productID {
			removed = true
			continue
		}
		out = append(out, id)
	}
	return out
}

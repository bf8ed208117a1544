package stubapi

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azizbkh/boutique-client/pkg/api"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	store.Seed()
	return store
}

func TestStoreSeed(t *testing.T) {
	store := seededStore(t)

	products := store.listProducts()
	require.Len(t, products, 3)
	categories := store.listCategories()
	require.Len(t, categories, 2)

	admin, ok := store.accountByEmail("admin@boutique.dev")
	require.True(t, ok)
	assert.Equal(t, api.RoleAdmin, admin.Role)

	// Lookup is case-insensitive.
	_, ok = store.accountByEmail("Admin@Boutique.Dev")
	assert.True(t, ok)
}

func TestStoreCartTotalsComeFromPriceList(t *testing.T) {
	store := seededStore(t)
	products := store.listProducts()
	p1, p2 := products[0], products[1]

	// The draft claims a bogus total; the store ignores it.
	cart, ok := store.createCart(api.CartDraft{
		OwnerID: "u1",
		Items:   []string{p1.ID, p1.ID, p2.ID},
		Total:   decimal.NewFromInt(1),
	})
	require.True(t, ok)
	want := p1.Price.Mul(decimal.NewFromInt(2)).Add(p2.Price)
	assert.True(t, cart.Total.Equal(want), "total = %s, want %s", cart.Total, want)

	_, ok = store.createCart(api.CartDraft{OwnerID: "u1"})
	assert.False(t, ok, "second cart for the same owner")

	updated, ok := store.updateCart(cart.ID, api.CartUpdate{Items: []string{p2.ID}})
	require.True(t, ok)
	assert.True(t, updated.Total.Equal(p2.Price))

	require.True(t, store.deleteCart(cart.ID))
	_, ok = store.cartByOwner("u1")
	assert.False(t, ok)
}

func TestStoreOrderIdempotency(t *testing.T) {
	store := seededStore(t)
	products := store.listProducts()
	draft := api.OrderDraft{OwnerID: "u1", Items: []string{products[0].ID}, Status: api.OrderStatusPending}

	first := store.createOrder(draft, "key-a")
	replay := store.createOrder(draft, "key-a")
	assert.Equal(t, first.ID, replay.ID)
	assert.Len(t, store.listOrders(), 1)

	second := store.createOrder(draft, "key-b")
	assert.NotEqual(t, first.ID, second.ID)

	// Keyless creates are never deduplicated.
	third := store.createOrder(draft, "")
	fourth := store.createOrder(draft, "")
	assert.NotEqual(t, third.ID, fourth.ID)
	assert.Len(t, store.listOrders(), 4)
}

func TestStoreUnknownItemsContributeNothing(t *testing.T) {
	store := seededStore(t)
	products := store.listProducts()

	cart, ok := store.createCart(api.CartDraft{
		OwnerID: "u1",
		Items:   []string{products[0].ID, "ghost"},
	})
	require.True(t, ok)
	assert.True(t, cart.Total.Equal(products[0].Price))
}

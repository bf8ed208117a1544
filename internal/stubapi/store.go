package stubapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/azizbkh/boutique-client/pkg/api"
)

type account struct {
	api.UserInfo
	Password string
}

// Store holds the stub's whole state in memory. All access goes through its
// methods, which take the lock.
type Store struct {
	mu sync.RWMutex

	accounts   map[string]account // keyed by lowercased email
	products   map[string]api.Product
	categories map[string]api.Category
	carts      map[string]api.Cart // keyed by cart id
	orders     map[string]api.Order

	ordersByIdemKey map[string]string
}

func NewStore() *Store {
	return &Store{
		accounts:        map[string]account{},
		products:        map[string]api.Product{},
		categories:      map[string]api.Category{},
		carts:           map[string]api.Cart{},
		orders:          map[string]api.Order{},
		ordersByIdemKey: map[string]string{},
	}
}

// Seed loads a small demo catalog plus an admin and a customer account.
func (s *Store) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts["admin@boutique.dev"] = account{
		UserInfo: api.UserInfo{ID: uuid.NewString(), Name: "Admin", FirstName: "Boutique", Email: "admin@boutique.dev", Role: api.RoleAdmin},
		Password: "admin123",
	}
	s.accounts["client@boutique.dev"] = account{
		UserInfo: api.UserInfo{ID: uuid.NewString(), Name: "Durand", FirstName: "Camille", Email: "client@boutique.dev", Role: "customer"},
		Password: "client123",
	}

	vetements := api.Category{ID: uuid.NewString(), Name: "vetements"}
	accessoires := api.Category{ID: uuid.NewString(), Name: "accessoires"}
	s.categories[vetements.ID] = vetements
	s.categories[accessoires.ID] = accessoires

	for _, p := range []api.Product{
		{ID: uuid.NewString(), Name: "tshirt", Price: decimal.NewFromInt(15), CategoryID: vetements.ID},
		{ID: uuid.NewString(), Name: "veste", Price: decimal.NewFromInt(49), CategoryID: vetements.ID},
		{ID: uuid.NewString(), Name: "ceinture", Price: decimal.RequireFromString("12.50"), CategoryID: accessoires.ID},
	} {
		s.products[p.ID] = p
	}
}

func (s *Store) accountByEmail(email string) (account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[strings.ToLower(email)]
	return acc, ok
}

func (s *Store) addAccount(input api.RegistrationInput) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(input.Email)
	if _, exists := s.accounts[key]; exists {
		return account{}, false
	}
	acc := account{
		UserInfo: api.UserInfo{
			ID:        uuid.NewString(),
			Name:      input.Name,
			FirstName: input.FirstName,
			Email:     input.Email,
			Role:      "customer",
		},
		Password: input.Password,
	}
	s.accounts[key] = acc
	return acc, true
}

func (s *Store) listProducts() []api.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) product(id string) (api.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Store) putProduct(id string, input api.ProductInput) (api.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	} else if _, ok := s.products[id]; !ok {
		return api.Product{}, false
	}
	p := api.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		CategoryID:  input.CategoryID,
	}
	s.products[id] = p
	return p, true
}

func (s *Store) deleteProduct(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return false
	}
	delete(s.products, id)
	return true
}

func (s *Store) listCategories() []api.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) putCategory(id string, input api.CategoryInput) (api.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	} else if _, ok := s.categories[id]; !ok {
		return api.Category{}, false
	}
	c := api.Category{ID: id, Name: input.Name}
	s.categories[id] = c
	return c, true
}

func (s *Store) deleteCategory(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return false
	}
	delete(s.categories, id)
	return true
}

func (s *Store) cartByOwner(ownerID string) (api.Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.carts {
		if c.OwnerID == ownerID {
			return c, true
		}
	}
	return api.Cart{}, false
}

// createCart refuses a second cart for the same owner. The total is
// recomputed from the current price list, never trusted from the draft.
func (s *Store) createCart(draft api.CartDraft) (api.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.carts {
		if c.OwnerID == draft.OwnerID {
			return api.Cart{}, false
		}
	}
	cart := api.Cart{
		ID:      uuid.NewString(),
		OwnerID: draft.OwnerID,
		Items:   append([]string(nil), draft.Items...),
		Total:   s.totalLocked(draft.Items),
	}
	s.carts[cart.ID] = cart
	return cart, true
}

func (s *Store) updateCart(cartID string, update api.CartUpdate) (api.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[cartID]
	if !ok {
		return api.Cart{}, false
	}
	cart.Items = append([]string(nil), update.Items...)
	cart.Total = s.totalLocked(update.Items)
	s.carts[cartID] = cart
	return cart, true
}

func (s *Store) deleteCart(cartID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[cartID]; !ok {
		return false
	}
	delete(s.carts, cartID)
	return true
}

// createOrder replays the stored order when the idempotency key was already
// seen, so a retried POST cannot produce a duplicate.
func (s *Store) createOrder(draft api.OrderDraft, idemKey string) api.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idemKey != "" {
		if id, seen := s.ordersByIdemKey[idemKey]; seen {
			return s.orders[id]
		}
	}
	order := api.Order{
		ID:        uuid.NewString(),
		OwnerID:   draft.OwnerID,
		Items:     append([]string(nil), draft.Items...),
		Total:     s.totalLocked(draft.Items),
		Status:    draft.Status,
		CreatedAt: time.Now().UTC(),
	}
	if order.Status == "" {
		order.Status = api.OrderStatusPending
	}
	s.orders[order.ID] = order
	if idemKey != "" {
		s.ordersByIdemKey[idemKey] = order.ID
	}
	return order
}

func (s *Store) listOrders() []api.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) setOrderStatus(orderID string, status api.OrderStatus) (api.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return api.Order{}, false
	}
	order.Status = status
	s.orders[orderID] = order
	return order, true
}

func (s *Store) deleteOrder(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return false
	}
	delete(s.orders, orderID)
	return true
}

// totalLocked sums the current prices of the referenced products. Unknown
// product ids contribute nothing. Callers must hold at least the read lock.
func (s *Store) totalLocked(items []string) decimal.Decimal {
	total := decimal.Zero
	for _, id := range items {
		if p, ok := s.products[id]; ok {
			total = total.Add(p.Price)
		}
	}
	return total
}

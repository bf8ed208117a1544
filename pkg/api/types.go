package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a user's pending collection of product references. Items holds one
// entry per unit, so the same product id may appear several times.
type Cart struct {
	ID      string          `json:"_id"`
	OwnerID string          `json:"id_user"`
	Items   []string        `json:"list_produit"`
	Total   decimal.Decimal `json:"somme"`
}

// CartDraft creates a cart for a user who does not have one yet.
type CartDraft struct {
	OwnerID string          `json:"id_user"`
	Items   []string        `json:"list_produit"`
	Total   decimal.Decimal `json:"somme"`
}

// CartUpdate replaces a cart's items and total wholesale.
type CartUpdate struct {
	Items []string        `json:"list_produit"`
	Total decimal.Decimal `json:"somme"`
}

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"nom"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"prix"`
	Image       string          `json:"image,omitempty"`
	CategoryID  string          `json:"categorie,omitempty"`
}

// ProductInput is the create/update payload for a product.
type ProductInput struct {
	Name        string          `json:"nom" validate:"required"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"prix" validate:"required"`
	Image       string          `json:"image,omitempty"`
	CategoryID  string          `json:"categorie" validate:"required"`
}

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"nom"`
}

// CategoryInput is the create/update payload for a category.
type CategoryInput struct {
	Name string `json:"nom" validate:"required"`
}

// OrderStatus mirrors the API's French status enum.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "nonvalider"
	OrderStatusValidated OrderStatus = "valider"
)

func (s OrderStatus) IsValid() bool {
	return s == OrderStatusPending || s == OrderStatusValidated
}

// Toggled returns the opposite validation state.
func (s OrderStatus) Toggled() OrderStatus {
	if s == OrderStatusValidated {
		return OrderStatusPending
	}
	return OrderStatusValidated
}

type Order struct {
	ID        string          `json:"_id"`
	OwnerID   string          `json:"id_user"`
	Items     []string        `json:"list_produit"`
	Total     decimal.Decimal `json:"somme"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
}

// OrderDraft is the create payload for an order, built from a cart.
type OrderDraft struct {
	OwnerID string          `json:"id_user"`
	Items   []string        `json:"list_produit"`
	Total   decimal.Decimal `json:"somme"`
	Status  OrderStatus     `json:"status"`
}

// OrderStatusUpdate flips an order's validation state.
type OrderStatusUpdate struct {
	Status OrderStatus `json:"status"`
}

type UserInfo struct {
	ID        string `json:"id"`
	Name      string `json:"nom,omitempty"`
	FirstName string `json:"prenom,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
}

const RoleAdmin = "admin"

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// RegistrationInput is the sign-up payload.
type RegistrationInput struct {
	Name      string `json:"nom" validate:"required"`
	FirstName string `json:"prenom" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"numero,omitempty"`
	Age       int    `json:"age,omitempty" validate:"omitempty,gte=0"`
	Password  string `json:"motdepasse" validate:"required,min=6"`
}

// APIMessage is the body shape the API uses for plain acknowledgements and
// for error responses.
type APIMessage struct {
	Message string `json:"message"`
}

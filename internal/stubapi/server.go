// Package stubapi is an in-memory rendition of the boutique REST API. It
// exists for local development and for exercising the client end to end
// without the real backend.
package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/azizbkh/boutique-client/pkg/api"
	"github.com/azizbkh/boutique-client/pkg/config"
	"github.com/azizbkh/boutique-client/pkg/logger"
)

type Server struct {
	store  *Store
	secret []byte
	logger *logger.Logger
}

func NewServer(cfg config.StubConfig, logg *logger.Logger) (*Server, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	store := NewStore()
	if cfg.Seed {
		store.Seed()
	}
	return &Server{store: store, secret: []byte(cfg.JWTSecret), logger: logg}, nil
}

// Store exposes the backing state for test setup.
func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/register", s.register)
	})

	r.Route("/api/produits", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Get("/{productID}", s.getProduct)
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(api.RoleAdmin))
			r.Post("/", s.createProduct)
			r.Put("/{productID}", s.updateProduct)
			r.Delete("/{productID}", s.deleteProduct)
		})
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", s.listCategories)
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(api.RoleAdmin))
			r.Post("/", s.createCategory)
			r.Put("/{categoryID}", s.updateCategory)
			r.Delete("/{categoryID}", s.deleteCategory)
		})
	})

	r.Route("/api/paniers", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/{userID}", s.getCart)
		r.Post("/", s.createCart)
		r.Put("/{cartID}", s.updateCart)
		r.Delete("/{cartID}", s.deleteCart)
	})

	r.Route("/api/commandes", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", s.createOrder)
		r.Get("/", s.listOrders)
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(api.RoleAdmin))
			r.Put("/{orderID}", s.updateOrderStatus)
			r.Delete("/{orderID}", s.deleteOrder)
		})
	})

	return r
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "corps de requete invalide")
		return
	}
	acc, ok := s.store.accountByEmail(creds.Email)
	if !ok || acc.Password != creds.Password {
		writeMessage(w, http.StatusUnauthorized, "email ou mot de passe incorrect")
		return
	}

	token, err := s.mintToken(acc.UserInfo)
	if err != nil {
		s.logger.Error(r.Context(), "minting token", err)
		writeMessage(w, http.StatusInternalServerError, "erreur interne")
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResult{Token: token, User: acc.UserInfo})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var input api.RegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "corps de requete invalide")
		return
	}
	if input.Email == "" || input.Name == "" || len(input.Password) < 6 {
		writeMessage(w, http.StatusBadRequest, "champs obligatoires manquants")
		return
	}
	if _, ok := s.store.addAccount(input); !ok {
		writeMessage(w, http.StatusBadRequest, "email deja utilise")
		return
	}
	writeJSON(w, http.StatusCreated, api.APIMessage{Message: "compte ajoute avec succes"})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listProducts())
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := s.store.product(chi.URLParam(r, "productID"))
	if !ok {
		writeMessage(w, http.StatusNotFound, "produit introuvable")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeProductInput(w, r)
	if !ok {
		return
	}
	product, _ := s.store.putProduct("", input)
	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeProductInput(w, r)
	if !ok {
		return
	}
	product, found := s.store.putProduct(chi.URLParam(r, "productID"), input)
	if !found {
		writeMessage(w, http.StatusNotFound, "produit introuvable")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !s.store.deleteProduct(chi.URLParam(r, "productID")) {
		writeMessage(w, http.StatusNotFound, "produit introuvable")
		return
	}
	writeJSON(w, http.StatusOK, api.APIMessage{Message: "produit supprime"})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listCategories())
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeCategoryInput(w, r)
	if !ok {
		return
	}
	category, _ := s.store.putCategory("", input)
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeCategoryInput(w, r)
	if !ok {
		return
	}
	category, found := s.store.putCategory(chi.URLParam(r, "categoryID"), input)
	if !found {
		writeMessage(w, http.StatusNotFound, "categorie introuvable")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if !s.store.deleteCategory(chi.URLParam(r, "categoryID")) {
		writeMessage(w, http.StatusNotFound, "categorie introuvable")
		return
	}
	writeJSON(w, http.StatusOK, api.APIMessage{Message: "categorie supprimee"})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := s.store.cartByOwner(chi.URLParam(r, "userID"))
	if !ok {
		writeMessage(w, http.StatusNotFound, "panier introuvable")
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) createCart(w http.ResponseWriter, r *http.Request) {
	var draft api.CartDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeMessage(w, http.StatusBadRequest, "corps de requete invalide")
		return
	}
	if draft.OwnerID == "" {
		writeMessage(w, http.StatusBadRequest, "id utilisateur obligatoire")
		return
	}
	cart, ok := s.store.createCart(draft)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "panier deja existant")
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

func (s *Server) updateCart(w http.ResponseWriter, r *http.Request) {
	var update api.CartUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeMessage(w, http.StatusBadRequest, "corps de requete invalide")
		return
	}
	cart, ok := s.store.updateCart(chi.URLParam(r, "cartID"), update)
	if !ok {
		writeMessage(w, http.StatusNotFound, "panier introuvable")
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) deleteCart(w http.ResponseWriter, r *http.Request) {
	if !s.store.deleteCart(chi.URLParam(r, "cartID")) {
		writeMessage(w, http.StatusNotFound, "panier introuvable")
		return
	}
	writeJSON(w, http.StatusOK, api.APIMessage{Message: "panier supprime"})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var draft api.OrderDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeMessage(w, http.StatusBadRequest, "corps de requete invalide")
		return
	}
	if draft.OwnerID == "" || len(draft.Items) == 0 {
		writeMessage(w, http.StatusBadRequest, "commande vide")
		return
	}
	order := s.store.createOrder(draft, r.Header.Get(api.IdempotencyKeyHeader))
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listOrders())
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var update api.OrderStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeMessage(w, http.StatusBadRequest, "corps de requete invalide")
		return
	}
	if !update.Status.IsValid() {
		writeMessage(w, http.StatusBadRequest, "statut invalide")
		return
	}
	order, ok := s.store.setOrderStatus(chi.URLParam(r, "orderID"), update.Status)
	if !ok {
		writeMessage(w, http.StatusNotFound, "commande introuvable")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if !s.store.deleteOrder(chi.URLParam(r, "orderID")) {
		writeMessage(w, http.StatusNotFound, "commande introuvable")
		return
	}
	writeJSON(w, http.StatusOK, api.APIMessage{Message: "commande supprimee"})
}

func (s *Server) mintToken(user api.UserInfo) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.claimsFromRequest(r); err != nil {
			writeMessage(w, http.StatusUnauthorized, "authentification requise")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.claimsFromRequest(r)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "authentification requise")
				return
			}
			if got, _ := claims["role"].(string); got != role {
				writeMessage(w, http.StatusForbidden, "acces refuse")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) claimsFromRequest(r *http.Request) (jwt.MapClaims, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, fmt.Errorf("missing bearer token")
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func decodeProductInput(w http.ResponseWriter, r *http.Request) (api.ProductInput, bool) {
	var input api.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "corps de requete invalide")
		return input, false
	}
	if input.Name == "" || input.CategoryID == "" {
		writeMessage(w, http.StatusBadRequest, "champs obligatoires manquants")
		return input, false
	}
	return input, true
}

func decodeCategoryInput(w http.ResponseWriter, r *http.Request) (api.CategoryInput, bool) {
	var input api.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "corps de requete invalide")
		return input, false
	}
	if input.Name == "" {
		writeMessage(w, http.StatusBadRequest, "nom obligatoire")
		return input, false
	}
	return input, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.APIMessage{Message: msg})
}

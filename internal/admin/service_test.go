package admin

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/azizbkh/boutique-client/internal/session"
	"github.com/azizbkh/boutique-client/pkg/api"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
)

type stubAPI struct {
	created         *api.ProductInput
	updatedID       string
	deletedProducts []string

	createdCategory   *api.CategoryInput
	updatedCategoryID string
	deletedCategories []string
}

func (s *stubAPI) CreateProduct(_ context.Context, input api.ProductInput) (*api.Product, error) {
	s.created = &input
	return &api.Product{ID: "p-new", Name: input.Name, Price: input.Price, CategoryID: input.CategoryID}, nil
}

func (s *stubAPI) UpdateProduct(_ context.Context, productID string, input api.ProductInput) (*api.Product, error) {
	s.updatedID = productID
	return &api.Product{ID: productID, Name: input.Name, Price: input.Price, CategoryID: input.CategoryID}, nil
}

func (s *stubAPI) DeleteProduct(_ context.Context, productID string) error {
	s.deletedProducts = append(s.deletedProducts, productID)
	return nil
}

func (s *stubAPI) CreateCategory(_ context.Context, input api.CategoryInput) (*api.Category, error) {
	s.createdCategory = &input
	return &api.Category{ID: "cat-new", Name: input.Name}, nil
}

func (s *stubAPI) UpdateCategory(_ context.Context, categoryID string, input api.CategoryInput) (*api.Category, error) {
	s.updatedCategoryID = categoryID
	return &api.Category{ID: categoryID, Name: input.Name}, nil
}

func (s *stubAPI) DeleteCategory(_ context.Context, categoryID string) error {
	s.deletedCategories = append(s.deletedCategories, categoryID)
	return nil
}

type stubSessions struct {
	session *session.Session
}

func (s *stubSessions) Current() (*session.Session, error) {
	if s.session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotAuthenticated, "no active session")
	}
	return s.session, nil
}

func adminSession() *stubSessions {
	return &stubSessions{session: &session.Session{
		Token: "tok",
		User:  api.UserInfo{ID: "u1", Role: api.RoleAdmin},
	}}
}

func newService(t *testing.T, stub *stubAPI, sessions *stubSessions) *Service {
	t.Helper()
	svc, err := NewService(stub, sessions, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validProduct() api.ProductInput {
	return api.ProductInput{
		Name:       "Thé vert",
		Price:      decimal.NewFromInt(10),
		CategoryID: "cat1",
	}
}

func TestSaveProductCreatesWhenIDEmpty(t *testing.T) {
	stub := &stubAPI{}
	svc := newService(t, stub, adminSession())

	product, err := svc.SaveProduct(context.Background(), "", validProduct())
	if err != nil {
		t.Fatalf("SaveProduct: %v", err)
	}
	if stub.created == nil || stub.updatedID != "" {
		t.Fatal("expected a create, not an update")
	}
	if product.ID != "p-new" {
		t.Fatalf("unexpected product %+v", product)
	}
}

func TestSaveProductUpdatesWhenIDSet(t *testing.T) {
	stub := &stubAPI{}
	svc := newService(t, stub, adminSession())

	if _, err := svc.SaveProduct(context.Background(), "p1", validProduct()); err != nil {
		t.Fatalf("SaveProduct: %v", err)
	}
	if stub.updatedID != "p1" || stub.created != nil {
		t.Fatal("expected an update, not a create")
	}
}

func TestSaveProductValidatesInput(t *testing.T) {
	svc := newService(t, &stubAPI{}, adminSession())

	_, err := svc.SaveProduct(context.Background(), "", api.ProductInput{})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestAdminRoleRequired(t *testing.T) {
	ctx := context.Background()

	customer := &stubSessions{session: &session.Session{
		Token: "tok",
		User:  api.UserInfo{ID: "u2", Role: "client"},
	}}
	svc := newService(t, &stubAPI{}, customer)
	if _, err := svc.SaveProduct(ctx, "", validProduct()); !pkgerrors.Is(err, pkgerrors.CodeNotAuthenticated) {
		t.Fatalf("expected NOT_AUTHENTICATED for customer, got %v", err)
	}

	signedOut := &stubSessions{}
	svc = newService(t, &stubAPI{}, signedOut)
	if err := svc.DeleteCategory(ctx, "cat1"); !pkgerrors.Is(err, pkgerrors.CodeNotAuthenticated) {
		t.Fatalf("expected NOT_AUTHENTICATED when signed out, got %v", err)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	stub := &stubAPI{}
	svc := newService(t, stub, adminSession())
	ctx := context.Background()

	created, err := svc.SaveCategory(ctx, "", api.CategoryInput{Name: "Thés"})
	if err != nil {
		t.Fatalf("SaveCategory create: %v", err)
	}
	if created.ID != "cat-new" || stub.createdCategory == nil {
		t.Fatalf("unexpected create %+v", created)
	}

	if _, err := svc.SaveCategory(ctx, "cat1", api.CategoryInput{Name: "Cafés"}); err != nil {
		t.Fatalf("SaveCategory update: %v", err)
	}
	if stub.updatedCategoryID != "cat1" {
		t.Fatalf("expected update of cat1, got %q", stub.updatedCategoryID)
	}

	if _, err := svc.SaveCategory(ctx, "", api.CategoryInput{}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for empty name, got %v", err)
	}

	if err := svc.DeleteCategory(ctx, "cat1"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if len(stub.deletedCategories) != 1 {
		t.Fatalf("unexpected deletions %v", stub.deletedCategories)
	}
}

func TestDeleteProductValidation(t *testing.T) {
	stub := &stubAPI{}
	svc := newService(t, stub, adminSession())

	if err := svc.DeleteProduct(context.Background(), " "); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if err := svc.DeleteProduct(context.Background(), "p1"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if len(stub.deletedProducts) != 1 {
		t.Fatalf("unexpected deletions %v", stub.deletedProducts)
	}
}

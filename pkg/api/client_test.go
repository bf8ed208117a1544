package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/azizbkh/boutique-client/pkg/config"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
	"github.com/azizbkh/boutique-client/pkg/metrics"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, logg, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestNewClientRequiresLoggerAndBaseURL(t *testing.T) {
	if _, err := NewClient(config.APIConfig{BaseURL: "http://x"}, nil, nil); err == nil {
		t.Fatal("expected error without logger")
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	if _, err := NewClient(config.APIConfig{BaseURL: "  "}, logg, nil); err == nil {
		t.Fatal("expected error without base url")
	}
}

func TestGetCartDecodesDecimalStringTotal(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/paniers/u1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"_id":"c1","id_user":"u1","list_produit":["p1","p1","p2"],"somme":"30.5"}`)
	}))

	cart, err := client.GetCart(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if cart.ID != "c1" || len(cart.Items) != 3 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if !cart.Total.Equal(decimal.RequireFromString("30.5")) {
		t.Fatalf("unexpected total %s", cart.Total)
	}
}

func TestErrorMappingUsesStatusAndMessageBody(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    pkgerrors.Code
		message string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"panier introuvable"}`, code: pkgerrors.CodeNotFound, message: "panier introuvable"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"token invalide"}`, code: pkgerrors.CodeNotAuthenticated, message: "token invalide"},
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, code: pkgerrors.CodeNotAuthenticated, message: "GET /api/paniers/u1 returned 403"},
		{name: "bad request", status: http.StatusBadRequest, body: `{"message":"somme invalide"}`, code: pkgerrors.CodeValidation, message: "somme invalide"},
		{name: "server error", status: http.StatusInternalServerError, body: `not json`, code: pkgerrors.CodeDependency, message: "GET /api/paniers/u1 returned 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))

			_, err := client.GetCart(context.Background(), "u1")
			typed := pkgerrors.As(err)
			if typed == nil {
				t.Fatalf("expected typed error, got %v", err)
			}
			if typed.Code() != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, typed.Code())
			}
			if typed.Message() != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, typed.Message())
			}
		})
	}
}

func TestTransportFailureIsDependencyError(t *testing.T) {
	client, srv := newTestClient(t, http.NewServeMux())
	srv.Close()

	_, err := client.ListProducts(context.Background())
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestBearerTokenAttachedWhenProviderSet(t *testing.T) {
	var got string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		io.WriteString(w, `[]`)
	}))

	if _, err := client.ListOrders(context.Background()); err != nil {
		t.Fatalf("anonymous call: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no auth header, got %q", got)
	}

	client.SetTokenProvider(func(context.Context) string { return "tok-123" })
	if _, err := client.ListOrders(context.Background()); err != nil {
		t.Fatalf("authenticated call: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestCreateOrderSendsIdempotencyKeyAndDraft(t *testing.T) {
	var (
		gotKey  string
		gotBody OrderDraft
	)
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(IdempotencyKeyHeader)
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding draft: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"_id":"o1","id_user":"u1","list_produit":["p1"],"somme":"10","status":"nonvalider"}`)
	}))

	draft := OrderDraft{
		OwnerID: "u1",
		Items:   []string{"p1"},
		Total:   decimal.NewFromInt(10),
		Status:  OrderStatusPending,
	}
	order, err := client.CreateOrder(context.Background(), draft, "key-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if gotKey != "key-1" {
		t.Fatalf("expected idempotency key header, got %q", gotKey)
	}
	if gotBody.Status != OrderStatusPending || gotBody.OwnerID != "u1" {
		t.Fatalf("unexpected draft %+v", gotBody)
	}
	if order.ID != "o1" || order.Status != OrderStatusPending {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestMetricsRecordSuccessAndFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAPICallMetrics(reg)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(config.APIConfig{BaseURL: srv.URL, Timeout: time.Second}, logg, m)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.ListCategories(context.Background()); err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if err := client.DeleteCart(context.Background(), "c1"); err == nil {
		t.Fatal("expected delete failure")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sawSuccess, sawFailure bool
	for _, mf := range mfs {
		switch mf.GetName() {
		case "api_call_success":
			sawSuccess = true
		case "api_call_failure":
			sawFailure = true
		}
	}
	if !sawSuccess || !sawFailure {
		t.Fatalf("expected both success and failure series, got success=%v failure=%v", sawSuccess, sawFailure)
	}
}

func TestOrderStatusToggled(t *testing.T) {
	if OrderStatusPending.Toggled() != OrderStatusValidated {
		t.Fatal("pending should toggle to validated")
	}
	if OrderStatusValidated.Toggled() != OrderStatusPending {
		t.Fatal("validated should toggle to pending")
	}
	if OrderStatus("autre").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}

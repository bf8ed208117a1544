package session

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/azizbkh/boutique-client/pkg/api"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testSession() Session {
	return Session{
		Token: "opaque-token",
		User:  api.UserInfo{ID: "u1", Email: "amira@example.tn", Role: "client"},
	}
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func newFileManager(t *testing.T) (*Manager, *FileStore) {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	mgr, err := NewManager(store, testLogger())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr, store
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr, store := newFileManager(t)

	if _, err := mgr.Current(); !pkgerrors.Is(err, pkgerrors.CodeNotAuthenticated) {
		t.Fatalf("expected NOT_AUTHENTICATED before login, got %v", err)
	}
	if mgr.Token(ctx) != "" {
		t.Fatal("expected empty token before login")
	}

	if err := mgr.Establish(ctx, testSession()); err != nil {
		t.Fatalf("Establish: %v", err)
	}
	current, err := mgr.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current.User.ID != "u1" || mgr.Token(ctx) != "opaque-token" {
		t.Fatalf("unexpected session %+v", current)
	}

	// establishment must have hit the durable store too
	cached, err := store.Load(ctx)
	if err != nil || cached == nil {
		t.Fatalf("expected persisted session, got %v/%v", cached, err)
	}

	if err := mgr.Teardown(ctx); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if _, err := mgr.Current(); !pkgerrors.Is(err, pkgerrors.CodeNotAuthenticated) {
		t.Fatal("expected NOT_AUTHENTICATED after teardown")
	}
	if cached, _ := store.Load(ctx); cached != nil {
		t.Fatal("expected cache cleared after teardown")
	}
}

func TestEstablishRejectsIncompleteSessions(t *testing.T) {
	mgr, _ := newFileManager(t)
	ctx := context.Background()

	if err := mgr.Establish(ctx, Session{User: api.UserInfo{ID: "u1"}}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error without token, got %v", err)
	}
	if err := mgr.Establish(ctx, Session{Token: "tok"}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error without user id, got %v", err)
	}
}

func TestHydrateRestoresCachedSession(t *testing.T) {
	ctx := context.Background()
	mgr, store := newFileManager(t)
	if err := store.Save(ctx, testSession()); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	current, err := mgr.Current()
	if err != nil {
		t.Fatalf("expected hydrated session, got %v", err)
	}
	if current.User.ID != "u1" {
		t.Fatalf("unexpected session %+v", current)
	}
}

func TestHydrateDropsExpiredJWT(t *testing.T) {
	ctx := context.Background()
	mgr, store := newFileManager(t)

	expired := testSession()
	expired.Token = signedToken(t, time.Now().Add(-time.Hour))
	if err := store.Save(ctx, expired); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if _, err := mgr.Current(); !pkgerrors.Is(err, pkgerrors.CodeNotAuthenticated) {
		t.Fatal("expired session should not hydrate")
	}
	if cached, _ := store.Load(ctx); cached != nil {
		t.Fatal("expired session should be cleared from the cache")
	}
}

func TestHydrateKeepsUnexpiredJWTAndOpaqueTokens(t *testing.T) {
	ctx := context.Background()

	for name, token := range map[string]string{
		"jwt":    signedToken(t, time.Now().Add(time.Hour)),
		"opaque": "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			mgr, store := newFileManager(t)
			cached := testSession()
			cached.Token = token
			if err := store.Save(ctx, cached); err != nil {
				t.Fatalf("seeding store: %v", err)
			}
			if err := mgr.Hydrate(ctx); err != nil {
				t.Fatalf("Hydrate: %v", err)
			}
			if _, err := mgr.Current(); err != nil {
				t.Fatalf("expected session to survive hydrate, got %v", err)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	admin := &Session{User: api.UserInfo{ID: "u1", Role: api.RoleAdmin}}
	if !admin.IsAdmin() {
		t.Fatal("admin role should report admin")
	}
	client := &Session{User: api.UserInfo{ID: "u2", Role: "client"}}
	if client.IsAdmin() {
		t.Fatal("client role must not report admin")
	}
	var nilSession *Session
	if nilSession.IsAdmin() {
		t.Fatal("nil session must not report admin")
	}
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if cached, err := store.Load(ctx); err != nil || cached != nil {
		t.Fatalf("missing file should load as signed out, got %v/%v", cached, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clearing a missing file should be a no-op, got %v", err)
	}
	if err := store.Save(ctx, testSession()); err != nil {
		t.Fatalf("Save should create parent dirs: %v", err)
	}
	if cached, err := store.Load(ctx); err != nil || cached == nil {
		t.Fatalf("expected roundtrip, got %v/%v", cached, err)
	}
}

package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/azizbkh/boutique-client/pkg/api"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
)

// Session is the authenticated identity plus its bearer token. It is always
// passed explicitly; nothing in this module reads ambient global state.
type Session struct {
	Token string       `json:"token"`
	User  api.UserInfo `json:"user"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.User.Role == api.RoleAdmin
}

// Store persists a session between runs. Load returns (nil, nil) when no
// session is cached.
type Store interface {
	Save(ctx context.Context, session Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}

// Manager owns the current session and its lifecycle: hydrate from the store
// on startup, establish on login, teardown on logout.
type Manager struct {
	store  Store
	logger *logger.Logger

	mu      sync.RWMutex
	current *Session
}

func NewManager(store Store, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("session logger is required")
	}
	return &Manager{store: store, logger: logg}, nil
}

// Hydrate loads the cached session, discarding it when its token has already
// expired. A store read failure only logs; an unreadable cache is treated as
// signed out.
func (m *Manager) Hydrate(ctx context.Context) error {
	cached, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "session cache unreadable, starting signed out")
		return nil
	}
	if cached == nil {
		return nil
	}
	if tokenExpired(cached.Token, time.Now()) {
		m.logger.Info(ctx, "cached session expired, clearing")
		return m.store.Clear(ctx)
	}

	m.mu.Lock()
	m.current = cached
	m.mu.Unlock()
	return nil
}

// Current returns the signed-in session or NOT_AUTHENTICATED.
func (m *Manager) Current() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotAuthenticated, "no active session")
	}
	return m.current, nil
}

// Establish records a fresh login and persists it.
func (m *Manager) Establish(ctx context.Context, session Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session token is required")
	}
	if strings.TrimSpace(session.User.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session user id is required")
	}

	m.mu.Lock()
	m.current = &session
	m.mu.Unlock()

	if err := m.store.Save(ctx, session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting session")
	}
	return nil
}

// Teardown signs out: drops the in-memory session and clears the cache.
func (m *Manager) Teardown(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing session cache")
	}
	return nil
}

// Token adapts the manager to api.TokenProvider.
func (m *Manager) Token(_ context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; the server stays the authority on validity. Tokens that do not
// parse as JWTs are kept.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(now)
}

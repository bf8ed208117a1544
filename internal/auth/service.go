package auth

import (
	"context"
	"fmt"

	"github.com/azizbkh/boutique-client/internal/session"
	"github.com/azizbkh/boutique-client/pkg/api"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
	"github.com/azizbkh/boutique-client/pkg/validate"
)

// API is the auth surface of the transport.
type API interface {
	Login(ctx context.Context, creds api.Credentials) (*api.LoginResult, error)
	Register(ctx context.Context, input api.RegistrationInput) (*api.APIMessage, error)
}

type sessionSink interface {
	Establish(ctx context.Context, s session.Session) error
	Teardown(ctx context.Context) error
}

// Service signs users in and out and registers new accounts.
type Service struct {
	api      API
	sessions sessionSink
	logger   *logger.Logger
}

func NewService(client API, sessions sessionSink, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("api client required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session sink required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{api: client, sessions: sessions, logger: logg}, nil
}

// SignIn exchanges credentials for a session and persists it.
func (s *Service) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	creds := api.Credentials{Email: email, Password: password}
	if err := validate.Struct(creds); err != nil {
		return nil, err
	}

	result, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	established := session.Session{Token: result.Token, User: result.User}
	if err := s.sessions.Establish(ctx, established); err != nil {
		return nil, err
	}
	s.logger.Info(s.logger.WithUserID(ctx, result.User.ID), "signed in")
	return &established, nil
}

// Register creates an account and returns the API's acknowledgement message.
// It does not sign the user in; the storefront sends them to sign-in next.
func (s *Service) Register(ctx context.Context, input api.RegistrationInput) (string, error) {
	if err := validate.Struct(input); err != nil {
		return "", err
	}
	ack, err := s.api.Register(ctx, input)
	if err != nil {
		return "", err
	}
	return ack.Message, nil
}

// SignOut tears the session down.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.sessions.Teardown(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "signing out")
	}
	s.logger.Info(ctx, "signed out")
	return nil
}

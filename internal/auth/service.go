// Package auth signs users in against the backend and resolves who is
// calling: a bearer token passed through, or a gateway session whose backend
// credentials live in the encrypted credential store.
package auth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mytrade/internal/backend"
	"mytrade/internal/credentials"
	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
)

type Authenticator interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.Session, error)
	Me(ctx context.Context, token string) (*domain.Viewer, error)
}

type CredentialStore interface {
	Put(ctx context.Context, namespace, key string, value []byte) error
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Delete(ctx context.Context, namespace string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	backend Authenticator
	store   CredentialStore
	logger  *zap.Logger
}

func NewService(backend Authenticator, store CredentialStore, logger *zap.Logger) *Service {
	return &Service{
		backend: backend,
		store:   store,
		logger:  logger,
	}
}

// Login signs in against the backend and opens a gateway session holding the
// returned token and user.
func (s *Service) Login(ctx context.Context, creds backend.Credentials) (*Principal, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	session, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	user, err := json.Marshal(session.User)
	if err != nil {
		return nil, apperrors.NewInternalError("encoding user", err)
	}

	sessionID := uuid.New().String()
	if err := s.store.Put(ctx, sessionID, credentials.KeyToken, []byte(session.Token)); err != nil {
		return nil, apperrors.NewInternalError("storing session token", err)
	}
	if err := s.store.Put(ctx, sessionID, credentials.KeyUser, user); err != nil {
		s.forget(ctx, sessionID)
		return nil, apperrors.NewInternalError("storing session user", err)
	}

	s.logger.Info("user signed in",
		zap.String("userId", session.User.ID),
		zap.String("role", string(session.User.Role)),
	)

	return &Principal{Viewer: session.User, Token: session.Token, SessionID: sessionID}, nil
}

// ResolveBearer asks the backend who owns the token.
func (s *Service) ResolveBearer(ctx context.Context, token string) (*Principal, error) {
	viewer, err := s.backend.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Principal{Viewer: *viewer, Token: token}, nil
}

// ResolveSession loads the credentials of a gateway session. Missing or
// unreadable credentials mean the caller is not signed in.
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (*Principal, error) {
	token, err := s.store.Get(ctx, sessionID, credentials.KeyToken)
	if err != nil {
		return nil, s.unreadable(ctx, sessionID, err)
	}
	rawUser, err := s.store.Get(ctx, sessionID, credentials.KeyUser)
	if err != nil {
		return nil, s.unreadable(ctx, sessionID, err)
	}

	var viewer domain.Viewer
	if err := json.Unmarshal(rawUser, &viewer); err != nil || viewer.ID == "" {
		s.forget(ctx, sessionID)
		return nil, apperrors.NewUnauthorizedError("session is corrupt, sign in again")
	}

	return &Principal{Viewer: viewer, Token: string(token), SessionID: sessionID}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return apperrors.NewInternalError("deleting session", err)
	}
	return nil
}

// ExpireSession drops the stored credentials of the request's session after
// the backend rejected its token. Bearer callers have nothing stored.
func (s *Service) ExpireSession(ctx context.Context) {
	p, ok := PrincipalFrom(ctx)
	if !ok || p.SessionID == "" {
		return
	}
	s.logger.Info("session expired by backend", zap.String("userId", p.Viewer.ID))
	s.forget(ctx, p.SessionID)
}

// PurgeStale removes sessions not refreshed within maxAge.
func (s *Service) PurgeStale(ctx context.Context, maxAge time.Duration) {
	n, err := s.store.PurgeOlderThan(ctx, time.Now().Add(-maxAge))
	if err != nil {
		s.logger.Warn("purging stale sessions failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("stale sessions purged", zap.Int64("credentials", n))
	}
}

func (s *Service) unreadable(ctx context.Context, sessionID string, err error) error {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return apperrors.NewUnauthorizedError("not signed in")
	}
	s.logger.Warn("session credentials unreadable", zap.Error(err))
	s.forget(ctx, sessionID)
	return apperrors.NewUnauthorizedError("session is no longer valid, sign in again")
}

func (s *Service) forget(ctx context.Context, sessionID string) {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("deleting session credentials failed", zap.Error(err))
	}
}

func validateCredentials(creds backend.Credentials) error {
	var details []apperrors.ValidationDetail
	if creds.Email == "" {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required"})
	}
	if creds.Password == "" {
		details = append(details, apperrors.ValidationDetail{Field: "password", Message: "password is required"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mytrade/internal/auth"
	"mytrade/internal/backend"
	"mytrade/internal/credentials"
	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
	ordercontroller "mytrade/internal/order/controller"
	"mytrade/internal/presence"
	"mytrade/internal/product"
)

type rejectingAuthenticator struct{}

func (rejectingAuthenticator) Login(ctx context.Context, creds backend.Credentials) (*backend.Session, error) {
	return nil, apperrors.NewUnauthorizedError("invalid credentials")
}

func (rejectingAuthenticator) Me(ctx context.Context, token string) (*domain.Viewer, error) {
	return nil, apperrors.NewUnauthorizedError("jwt expired")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := credentials.Open(filepath.Join(t.TempDir(), "creds.db"), "secret")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := zap.NewNop()
	svc := auth.NewService(rejectingAuthenticator{}, store, logger)

	return NewRouter(Handlers{
		Auth:     auth.NewHandler(svc, auth.NewSessionStore("cookie", time.Hour, false), logger),
		Orders:   ordercontroller.NewOrdersController(nil, nil, nil, svc, logger),
		Products: product.NewController(nil, svc, logger),
		Presence: presence.NewHandler(presence.NopTracker{}, logger),
	}, logger)
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_StatusesArePublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/statuses", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "statuses")
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/orders/supplier"},
		{http.MethodPost, "/api/v1/orders/supplier/o-1/actions"},
		{http.MethodGet, "/api/v1/orders/supplier/o-1/history"},
		{http.MethodGet, "/api/v1/products"},
		{http.MethodPost, "/api/v1/presence/heartbeat"},
		{http.MethodGet, "/api/v1/presence/u-1"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_RejectedBearerIsSessionExpired(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/supplier", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "SESSION_EXPIRED")
}

func TestRouter_UnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package presence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mytrade/internal/auth"
	"mytrade/internal/domain"
)

type mockTracker struct {
	MarkOnlineFunc func(ctx context.Context, userID string) error
	IsOnlineFunc   func(ctx context.Context, userID string) (bool, error)
}

func (m *mockTracker) MarkOnline(ctx context.Context, userID string) error {
	return m.MarkOnlineFunc(ctx, userID)
}

func (m *mockTracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	return m.IsOnlineFunc(ctx, userID)
}

func (m *mockTracker) OnlineMany(ctx context.Context, userIDs []string) (map[string]bool, error) {
	return nil, errors.New("not used")
}

func withViewer(r *http.Request, id string) *http.Request {
	p := &auth.Principal{Viewer: domain.Viewer{ID: id, Role: domain.RoleSupplier}, Token: "tok"}
	return r.WithContext(auth.WithPrincipal(r.Context(), p))
}

func TestHeartbeat(t *testing.T) {
	marked := ""
	h := NewHandler(&mockTracker{MarkOnlineFunc: func(ctx context.Context, userID string) error {
		marked = userID
		return nil
	}}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Heartbeat(rec, withViewer(httptest.NewRequest(http.MethodPost, "/api/v1/presence/heartbeat", nil), "s-1"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "s-1", marked)
}

func TestHeartbeat_NoPrincipal(t *testing.T) {
	h := NewHandler(&mockTracker{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Heartbeat(rec, httptest.NewRequest(http.MethodPost, "/api/v1/presence/heartbeat", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHeartbeat_TrackerFailure(t *testing.T) {
	h := NewHandler(&mockTracker{MarkOnlineFunc: func(ctx context.Context, userID string) error {
		return errors.New("redis down")
	}}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Heartbeat(rec, withViewer(httptest.NewRequest(http.MethodPost, "/api/v1/presence/heartbeat", nil), "s-1"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatus(t *testing.T) {
	h := NewHandler(&mockTracker{IsOnlineFunc: func(ctx context.Context, userID string) (bool, error) {
		return userID == "s-1", nil
	}}, zap.NewNop())

	r := chi.NewRouter()
	r.Get("/api/v1/presence/{userId}", h.Status)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/presence/s-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s-1", resp.UserID)
	assert.True(t, resp.Online)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/presence/s-2", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Online)
}

package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"mytrade/internal/backend"
	"mytrade/internal/commons"
	"mytrade/internal/config"
	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
)

const (
	SessionName    = "mytrade-session"
	sessionIDValue = "sid"
	bearerPrefix   = "bearer "
	defaultMaxAge  = 7 * 24 * 60 * 60
)

func NewSessionStore(secret string, maxAge time.Duration, secure bool) *sessions.CookieStore {
	if secret == "" {
		secret = config.DefaultSessionSecret
	}
	s := sessions.NewCookieStore([]byte(secret))
	s.Options.Path = "/"
	s.Options.HttpOnly = true
	s.Options.Secure = secure
	s.Options.SameSite = http.SameSiteLaxMode
	s.Options.MaxAge = defaultMaxAge
	if maxAge > 0 {
		s.Options.MaxAge = int(maxAge.Seconds())
	}
	return s
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	TraceID   string        `json:"traceId"`
	User      domain.Viewer `json:"user"`
	Token     string        `json:"token"`
	Timestamp time.Time     `json:"timestamp"`
}

type MeResponse struct {
	User          domain.Viewer `json:"user"`
	Authenticated string        `json:"authenticatedBy"`
}

type Handler struct {
	service  *Service
	sessions sessions.Store
	logger   *zap.Logger
}

func NewHandler(service *Service, store sessions.Store, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: store,
		logger:   logger,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := h.logger.With(zap.String("traceId", traceID))

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		commons.WriteValidationError(w, traceID, "invalid JSON body", logger, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	principal, err := h.service.Login(r.Context(), backend.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	// A stale or foreign cookie yields a fresh session along with the error.
	session, _ := h.sessions.Get(r, SessionName)
	session.Values[sessionIDValue] = principal.SessionID
	if err := session.Save(r, w); err != nil {
		logger.Error("saving session cookie failed", zap.Error(err))
		h.service.forget(r.Context(), principal.SessionID)
		commons.WriteError(w, traceID, apperrors.NewInternalError("saving session", err), logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, LoginResponse{
		TraceID:   traceID,
		User:      principal.Viewer,
		Token:     principal.Token,
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := h.logger.With(zap.String("traceId", traceID))

	session, _ := h.sessions.Get(r, SessionName)
	if sid, _ := session.Values[sessionIDValue].(string); sid != "" {
		if err := h.service.Logout(r.Context(), sid); err != nil {
			commons.WriteError(w, traceID, err, logger)
			return
		}
	}

	session.Options.MaxAge = -1
	delete(session.Values, sessionIDValue)
	if err := session.Save(r, w); err != nil {
		logger.Warn("expiring session cookie failed", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		commons.WriteError(w, "", apperrors.NewUnauthorizedError("not signed in"), h.logger)
		return
	}

	by := "session"
	if p.SessionID == "" {
		by = "bearer"
	}
	commons.WriteJSON(w, http.StatusOK, MeResponse{User: p.Viewer, Authenticated: by}, h.logger)
}

// RequireAuth resolves the caller from the Authorization header first and the
// session cookie second, and rejects the request when neither works.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := h.resolve(r)
		if err != nil {
			traceID := uuid.New().String()
			if _, ok := apperrors.IsUnauthorizedError(err); ok && h.hasCredential(r) {
				commons.WriteSessionExpired(w, traceID, h.logger)
				return
			}
			commons.WriteError(w, traceID, err, h.logger)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func (h *Handler) resolve(r *http.Request) (*Principal, error) {
	if token := bearerToken(r); token != "" {
		return h.service.ResolveBearer(r.Context(), token)
	}

	session, err := h.sessions.Get(r, SessionName)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("not signed in")
	}
	sid, _ := session.Values[sessionIDValue].(string)
	if sid == "" {
		return nil, apperrors.NewUnauthorizedError("not signed in")
	}
	return h.service.ResolveSession(r.Context(), sid)
}

func (h *Handler) hasCredential(r *http.Request) bool {
	if bearerToken(r) != "" {
		return true
	}
	_, err := r.Cookie(SessionName)
	return err == nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

package presence

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mytrade/internal/auth"
	"mytrade/internal/commons"
	apperrors "mytrade/internal/errors"
)

type StatusResponse struct {
	UserID    string    `json:"userId"`
	Online    bool      `json:"online"`
	CheckedAt time.Time `json:"checkedAt"`
}

type Handler struct {
	tracker Tracker
	logger  *zap.Logger
}

func NewHandler(tracker Tracker, logger *zap.Logger) *Handler {
	return &Handler{tracker: tracker, logger: logger}
}

// Heartbeat marks the caller online for one TTL.
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := h.logger.With(zap.String("traceId", traceID))

	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("not signed in"), logger)
		return
	}

	if err := h.tracker.MarkOnline(r.Context(), p.Viewer.ID); err != nil {
		commons.WriteError(w, traceID, apperrors.NewInternalError("recording heartbeat", err), logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := h.logger.With(zap.String("traceId", traceID))

	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	if userID == "" {
		commons.WriteValidationError(w, traceID, "userId is required", logger, apperrors.ValidationDetail{
			Field:   "userId",
			Message: "userId must not be empty",
		})
		return
	}

	online, err := h.tracker.IsOnline(r.Context(), userID)
	if err != nil {
		commons.WriteError(w, traceID, apperrors.NewInternalError("reading presence", err), logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, StatusResponse{
		UserID:    userID,
		Online:    online,
		CheckedAt: time.Now().UTC(),
	}, logger)
}

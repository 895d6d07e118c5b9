package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mytrade/internal/auth"
	"mytrade/internal/commons"
	"mytrade/internal/domain"
	"mytrade/internal/dto"
	apperrors "mytrade/internal/errors"
	"mytrade/internal/order/usecase"
	"mytrade/internal/order/view"
	"mytrade/internal/policy"
)

type ListOrdersUseCase interface {
	List(ctx context.Context, q usecase.ListQuery) (*dto.OrderList, error)
}

type PerformActionUseCase interface {
	Perform(ctx context.Context, cmd usecase.ActionCommand) (*dto.ActionResult, error)
}

type OrderHistoryUseCase interface {
	History(ctx context.Context, q usecase.HistoryQuery) ([]domain.OrderAction, error)
}

// SessionExpirer forgets the caller's stored credentials once the backend
// has rejected them.
type SessionExpirer interface {
	ExpireSession(ctx context.Context)
}

type OrdersController struct {
	list    ListOrdersUseCase
	perform PerformActionUseCase
	history OrderHistoryUseCase
	expirer SessionExpirer
	logger  *zap.Logger
}

func NewOrdersController(
	list ListOrdersUseCase,
	perform PerformActionUseCase,
	history OrderHistoryUseCase,
	expirer SessionExpirer,
	logger *zap.Logger,
) *OrdersController {
	return &OrdersController{
		list:    list,
		perform: perform,
		history: history,
		expirer: expirer,
		logger:  logger,
	}
}

func (c *OrdersController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("not signed in"), logger)
		return
	}

	v, err := view.Lookup(chi.URLParam(r, "view"))
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	result, err := c.list.List(r.Context(), usecase.ListQuery{
		View:   v,
		Viewer: principal.Viewer,
		Token:  principal.Token,
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
	})
	if err != nil {
		c.handleUseCaseError(w, r, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.OrderListResponse{
		TraceID:   traceID,
		View:      result.View,
		Count:     len(result.Orders),
		Demo:      result.Demo,
		Orders:    nonNilOrders(result.Orders),
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (c *OrdersController) PerformAction(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("not signed in"), logger)
		return
	}

	v, err := view.Lookup(chi.URLParam(r, "view"))
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	var req dto.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		commons.WriteValidationError(w, traceID, "invalid JSON body", logger, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if validationErr := validateActionRequest(orderID, req); validationErr != nil {
		commons.WriteError(w, traceID, validationErr, logger)
		return
	}

	result, err := c.perform.Perform(r.Context(), usecase.ActionCommand{
		View:          v,
		Viewer:        principal.Viewer,
		Token:         principal.Token,
		OrderID:       orderID,
		Action:        strings.TrimSpace(req.Action),
		Reason:        req.Reason,
		TransporterID: strings.TrimSpace(req.TransporterID),
		TraceID:       traceID,
	})
	if err != nil {
		c.handleUseCaseError(w, r, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.ActionResponse{
		TraceID:   traceID,
		Action:    result.Action,
		Order:     result.Order,
		Orders:    result.Orders,
		Refreshed: result.Orders != nil,
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (c *OrdersController) OrderHistory(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("not signed in"), logger)
		return
	}

	v, err := view.Lookup(chi.URLParam(r, "view"))
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			commons.WriteValidationError(w, traceID, "invalid limit", logger, apperrors.ValidationDetail{
				Field:   "limit",
				Message: "limit must be an integer",
			})
			return
		}
		limit = n
	}

	entries, err := c.history.History(r.Context(), usecase.HistoryQuery{
		View:    v,
		Viewer:  principal.Viewer,
		Token:   principal.Token,
		OrderID: orderID,
		Limit:   limit,
	})
	if err != nil {
		c.handleUseCaseError(w, r, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.HistoryResponse{
		TraceID:   traceID,
		OrderID:   orderID,
		Entries:   entries,
		Timestamp: time.Now().UTC(),
	}, logger)
}

// Statuses lists how every known status is drawn.
func (c *OrdersController) Statuses(w http.ResponseWriter, r *http.Request) {
	commons.WriteJSON(w, http.StatusOK, dto.StatusesResponse{Statuses: policy.All()}, c.logger)
}

// Views lists the order views with the role each one requires.
func (c *OrdersController) Views(w http.ResponseWriter, r *http.Request) {
	views := view.All()
	resp := make([]dto.ViewSummary, len(views))
	for i, v := range views {
		resp[i] = dto.ViewSummary{Name: string(v.Name), Role: v.Role}
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func validateActionRequest(orderID string, req dto.ActionRequest) error {
	var details []apperrors.ValidationDetail

	if orderID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId is required",
		})
	}

	if strings.TrimSpace(req.Action) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "action",
			Message: "action is required",
		})
	}

	if len(req.Reason) > maxReasonLength {
		details = append(details, apperrors.ValidationDetail{
			Field:   "reason",
			Message: "reason exceeds maximum of " + strconv.Itoa(maxReasonLength) + " characters",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

const maxReasonLength = 1000

func (c *OrdersController) handleUseCaseError(w http.ResponseWriter, r *http.Request, traceID string, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		logger.Info("backend rejected credentials", zap.Error(err))
		c.expirer.ExpireSession(r.Context())
		commons.WriteSessionExpired(w, traceID, logger)
		return
	}
	commons.WriteError(w, traceID, err, logger)
}

func nonNilOrders(orders []dto.OrderView) []dto.OrderView {
	if orders == nil {
		return []dto.OrderView{}
	}
	return orders
}

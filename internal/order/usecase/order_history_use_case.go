package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
	"mytrade/internal/order/view"
)

type AuditReader interface {
	FindByOrderID(ctx context.Context, orderID string, limit int) ([]domain.OrderAction, error)
}

const maxHistoryLimit = 500

type HistoryQuery struct {
	View    view.View
	Viewer  domain.Viewer
	Token   string
	OrderID string
	Limit   int
}

type OrderHistoryUseCase struct {
	orders OrderListing
	audit  AuditReader
	logger *zap.Logger
}

func NewOrderHistoryUseCase(orders OrderListing, audit AuditReader, logger *zap.Logger) *OrderHistoryUseCase {
	return &OrderHistoryUseCase{orders: orders, audit: audit, logger: logger}
}

// History lists the actions performed on the order through the gateway,
// newest first. Only orders the viewer can see in the view have a history.
func (uc *OrderHistoryUseCase) History(ctx context.Context, q HistoryQuery) ([]domain.OrderAction, error) {
	orderID := strings.TrimSpace(q.OrderID)
	if orderID == "" {
		return nil, apperrors.NewValidationError("orderId is required", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must not be empty",
		})
	}
	if q.Limit < 0 || q.Limit > maxHistoryLimit {
		return nil, apperrors.NewValidationError("invalid limit", apperrors.ValidationDetail{
			Field:   "limit",
			Message: "limit must be between 1 and 500",
		})
	}

	list, err := uc.orders.List(ctx, ListQuery{View: q.View, Viewer: q.Viewer, Token: q.Token})
	if err != nil {
		return nil, err
	}
	if findOrder(list.Orders, orderID) == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %s not found in %s orders", orderID, q.View.Name))
	}

	entries, err := uc.audit.FindByOrderID(ctx, orderID, q.Limit)
	if err != nil {
		uc.logger.Error("loading order history failed", zap.String("orderId", orderID), zap.Error(err))
		return nil, apperrors.NewInternalError("loading order history", err)
	}
	return entries, nil
}

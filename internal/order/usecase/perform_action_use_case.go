package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mytrade/internal/domain"
	"mytrade/internal/dto"
	apperrors "mytrade/internal/errors"
	"mytrade/internal/events"
	"mytrade/internal/order/service"
	"mytrade/internal/order/view"
	"mytrade/internal/policy"
)

type OrderListing interface {
	List(ctx context.Context, q ListQuery) (*dto.OrderList, error)
}

type MutationDispatcher interface {
	Dispatch(ctx context.Context, token string, m service.Mutation) (*domain.Order, error)
}

type AuditRecorder interface {
	Insert(ctx context.Context, action domain.OrderAction) (uint64, error)
}

type EventPublisher interface {
	PublishOrderAction(ctx context.Context, event events.OrderActionEvent) error
}

type ActionCommand struct {
	View          view.View
	Viewer        domain.Viewer
	Token         string
	OrderID       string
	Action        string
	Reason        string
	TransporterID string
	TraceID       string
}

type PerformActionUseCase struct {
	orders     OrderListing
	dispatcher MutationDispatcher
	audit      AuditRecorder
	publisher  EventPublisher
	logger     *zap.Logger
}

func NewPerformActionUseCase(
	orders OrderListing,
	dispatcher MutationDispatcher,
	audit AuditRecorder,
	publisher EventPublisher,
	logger *zap.Logger,
) *PerformActionUseCase {
	return &PerformActionUseCase{
		orders:     orders,
		dispatcher: dispatcher,
		audit:      audit,
		publisher:  publisher,
		logger:     logger,
	}
}

// Perform runs one action on an order of the view. The action must be one the
// policy offers the viewer for the order's current status; the backend has
// the final word and may still refuse it.
func (uc *PerformActionUseCase) Perform(ctx context.Context, cmd ActionCommand) (*dto.ActionResult, error) {
	logger := uc.logger.With(
		zap.String("traceId", cmd.TraceID),
		zap.String("orderId", cmd.OrderID),
		zap.String("action", cmd.Action),
		zap.String("viewerId", cmd.Viewer.ID),
	)
	logger.Info("order action started", zap.String("view", string(cmd.View.Name)))

	list, err := uc.orders.List(ctx, ListQuery{View: cmd.View, Viewer: cmd.Viewer, Token: cmd.Token})
	if err != nil {
		return nil, err
	}
	if list.Demo {
		return nil, apperrors.NewNetworkError("backend unavailable, demo orders are read-only", nil)
	}

	current := findOrder(list.Orders, cmd.OrderID)
	if current == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %s not found in %s orders", cmd.OrderID, cmd.View.Name))
	}

	action, ok := policy.Find(current.Actions, cmd.Action)
	if !ok {
		return nil, apperrors.NewConflictError(fmt.Sprintf("action %q is not available for an order in status %s", cmd.Action, current.Status))
	}

	updated, err := uc.dispatcher.Dispatch(ctx, cmd.Token, service.Mutation{
		OrderID:       current.ID,
		Action:        action,
		Reason:        cmd.Reason,
		TransporterID: cmd.TransporterID,
	})
	uc.record(ctx, cmd, current.Order, action, err, logger)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, cmd, current.Order, action, logger)
	logger.Info("order action completed", zap.String("targetStatus", string(action.Target)))

	return uc.refresh(ctx, cmd, action, current, updated, logger), nil
}

// refresh re-reads the view so the caller sees the backend's state after the
// action. A failed refresh is not an error: the action already happened.
func (uc *PerformActionUseCase) refresh(
	ctx context.Context,
	cmd ActionCommand,
	action policy.Action,
	before *dto.OrderView,
	updated *domain.Order,
	logger *zap.Logger,
) *dto.ActionResult {
	result := &dto.ActionResult{Action: action}

	list, err := uc.orders.List(ctx, ListQuery{View: cmd.View, Viewer: cmd.Viewer, Token: cmd.Token})
	if err != nil || list.Demo {
		logger.Warn("refreshing orders after action failed", zap.Error(err))
	} else {
		result.Orders = list.Orders
		if found := findOrder(list.Orders, before.ID); found != nil {
			result.Order = found
			return result
		}
	}

	if action.Kind == policy.KindDelete {
		return result
	}

	// The order left the view or the list is unavailable: build it from the
	// backend echo, or from the state we know we asked for.
	order := before.Order
	if updated != nil {
		order = *updated
	} else {
		order.Status = action.Target
	}
	result.Order = &dto.OrderView{
		Order:        order,
		Presentation: policy.Present(order.Status),
		Actions:      []policy.Action{},
	}
	if actions := policy.ForOrder(order, cmd.View.Perspective, cmd.Viewer); actions != nil {
		result.Order.Actions = actions
	}
	return result
}

func (uc *PerformActionUseCase) record(ctx context.Context, cmd ActionCommand, order domain.Order, action policy.Action, dispatchErr error, logger *zap.Logger) {
	outcome := domain.OutcomeSuccess
	if dispatchErr != nil {
		outcome = apperrors.Code(dispatchErr)
	}

	_, err := uc.audit.Insert(ctx, domain.OrderAction{
		OrderID:    order.ID,
		Action:     action.Name,
		FromStatus: order.Status,
		ToStatus:   action.Target,
		ActorID:    cmd.Viewer.ID,
		ActorRole:  cmd.Viewer.Role,
		Reason:     strings.TrimSpace(cmd.Reason),
		Outcome:    outcome,
		TraceID:    cmd.TraceID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		logger.Error("recording order action failed", zap.String("outcome", outcome), zap.Error(err))
	}
}

func (uc *PerformActionUseCase) publish(ctx context.Context, cmd ActionCommand, order domain.Order, action policy.Action, logger *zap.Logger) {
	event := events.NewOrderActionEvent(order.ID, action.Name, order.Status, action.Target, cmd.Viewer, strings.TrimSpace(cmd.Reason))
	if err := uc.publisher.PublishOrderAction(ctx, event); err != nil {
		logger.Warn("order action event not published", zap.String("eventId", event.EventID), zap.Error(err))
	}
}

func findOrder(orders []dto.OrderView, id string) *dto.OrderView {
	id = strings.TrimSpace(id)
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i]
		}
	}
	return nil
}

package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"mytrade/internal/backend"
	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
	"mytrade/internal/policy"
)

type OrderBackend interface {
	UpdateOrderStatus(ctx context.Context, token, orderID string, update backend.StatusUpdate) (*domain.Order, error)
	DeleteOrder(ctx context.Context, token, orderID string) error
}

// Mutation is a policy action resolved for one order, ready to be sent.
type Mutation struct {
	OrderID       string
	Action        policy.Action
	Reason        string
	TransporterID string
}

const (
	assignmentSpecific = "specific"
	assignmentFree     = "free"
)

type MutationDispatcher struct {
	backend OrderBackend
	logger  *zap.Logger
}

func NewMutationDispatcher(backend OrderBackend, logger *zap.Logger) *MutationDispatcher {
	return &MutationDispatcher{
		backend: backend,
		logger:  logger,
	}
}

// Dispatch turns the mutation into one backend call. Nothing is sent when the
// mutation is invalid. The returned order is nil after a delete or when the
// backend does not echo the updated order.
func (d *MutationDispatcher) Dispatch(ctx context.Context, token string, m Mutation) (*domain.Order, error) {
	if err := d.validate(m); err != nil {
		return nil, err
	}

	logger := d.logger.With(zap.String("orderId", m.OrderID), zap.String("action", m.Action.Name))

	switch m.Action.Kind {
	case policy.KindDelete:
		if err := d.backend.DeleteOrder(ctx, token, m.OrderID); err != nil {
			logger.Warn("delete order failed", zap.Error(err))
			return nil, err
		}
		logger.Info("order deleted")
		return nil, nil

	case policy.KindAssign:
		update := backend.StatusUpdate{
			Status:         m.Action.Target,
			Reason:         strings.TrimSpace(m.Reason),
			AssignmentType: assignmentFree,
		}
		if id := strings.TrimSpace(m.TransporterID); id != "" {
			update.TransporterID = id
			update.AssignmentType = assignmentSpecific
		}
		return d.update(ctx, token, m.OrderID, update, logger)

	default:
		return d.update(ctx, token, m.OrderID, backend.StatusUpdate{
			Status: m.Action.Target,
			Reason: strings.TrimSpace(m.Reason),
		}, logger)
	}
}

func (d *MutationDispatcher) update(ctx context.Context, token, orderID string, update backend.StatusUpdate, logger *zap.Logger) (*domain.Order, error) {
	order, err := d.backend.UpdateOrderStatus(ctx, token, orderID, update)
	if err != nil {
		logger.Warn("status update failed", zap.String("targetStatus", string(update.Status)), zap.Error(err))
		return nil, err
	}
	logger.Info("status updated",
		zap.String("targetStatus", string(update.Status)),
		zap.String("assignmentType", update.AssignmentType),
	)
	return order, nil
}

func (d *MutationDispatcher) validate(m Mutation) error {
	if strings.TrimSpace(m.OrderID) == "" {
		return apperrors.NewValidationError("orderId is required", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must not be empty",
		})
	}
	if m.Action.Kind != policy.KindDelete && m.Action.Target == "" {
		return apperrors.NewInternalError("action "+m.Action.Name+" has no target status", nil)
	}
	return policy.ValidateReason(m.Action, m.Reason)
}

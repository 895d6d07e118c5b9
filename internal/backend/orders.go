package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
)

// List endpoints, one per role screen.
const (
	SupplierOrdersPath           = "/api/orders/supplier"
	WholesalerOrdersPath         = "/api/orders/wholesaler"
	WholesalerOutgoingOrdersPath = "/api/orders/wholesaler/outgoing"
	TransporterOrdersPath        = "/api/orders/transporter"
	RetailerOrdersPath           = "/api/orders/retailer"
)

// StatusUpdate is the body of PUT /api/orders/{id}/status.
type StatusUpdate struct {
	Status         domain.Status `json:"status"`
	Reason         string        `json:"reason,omitempty"`
	TransporterID  string        `json:"transporterId,omitempty"`
	AssignmentType string        `json:"assignmentType,omitempty"`
}

func orderPath(orderID string) string {
	return "/api/orders/" + url.PathEscape(orderID)
}

func (c *Client) ListOrders(ctx context.Context, token, path string) ([]domain.Order, error) {
	env, err := c.get(ctx, token, path)
	if err != nil {
		return nil, err
	}

	raw := env.list("orders")
	if raw == nil {
		return []domain.Order{}, nil
	}

	var orders []domain.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, apperrors.NewServerError(0, fmt.Sprintf("decoding orders: %v", err))
	}
	return orders, nil
}

// UpdateOrderStatus asks the backend to move the order to update.Status. The
// returned order is nil when the backend does not echo it back.
func (c *Client) UpdateOrderStatus(ctx context.Context, token, orderID string, update StatusUpdate) (*domain.Order, error) {
	env, err := c.put(ctx, token, orderPath(orderID)+"/status", update)
	if err != nil {
		return nil, err
	}

	raw := env.object("order")
	if raw == nil {
		return nil, nil
	}

	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, apperrors.NewServerError(0, fmt.Sprintf("decoding order: %v", err))
	}
	if order.ID == "" {
		return nil, nil
	}
	return &order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, token, orderID string) error {
	_, err := c.delete(ctx, token, orderPath(orderID))
	return err
}

package dto

import (
	"time"

	"mytrade/internal/domain"
	"mytrade/internal/policy"
)

// OrderView is an order as a screen renders it: the backend fields plus how
// to draw the status and which buttons to offer.
type OrderView struct {
	domain.Order
	Presentation   policy.Presentation `json:"presentation"`
	Actions        []policy.Action     `json:"actions"`
	SupplierOnline *bool               `json:"supplierOnline,omitempty"`
	Demo           bool                `json:"demo,omitempty"`
}

type OrderList struct {
	View   string
	Orders []OrderView
	Demo   bool
}

type OrderListResponse struct {
	TraceID   string      `json:"traceId"`
	View      string      `json:"view"`
	Count     int         `json:"count"`
	Demo      bool        `json:"demo"`
	Orders    []OrderView `json:"orders"`
	Timestamp time.Time   `json:"timestamp"`
}

type ActionRequest struct {
	Action        string `json:"action"`
	Reason        string `json:"reason"`
	TransporterID string `json:"transporterId"`
}

type ActionResult struct {
	Action policy.Action
	// Order is nil after a delete.
	Order *OrderView
	// Orders is nil when the list could not be refreshed after the action.
	Orders []OrderView
}

type ActionResponse struct {
	TraceID   string        `json:"traceId"`
	Action    policy.Action `json:"action"`
	Order     *OrderView    `json:"order"`
	Orders    []OrderView   `json:"orders,omitempty"`
	Refreshed bool          `json:"refreshed"`
	Timestamp time.Time     `json:"timestamp"`
}

type HistoryResponse struct {
	TraceID   string               `json:"traceId"`
	OrderID   string               `json:"orderId"`
	Entries   []domain.OrderAction `json:"entries"`
	Timestamp time.Time            `json:"timestamp"`
}

type StatusesResponse struct {
	Statuses []policy.Presentation `json:"statuses"`
}

type ViewSummary struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Status is the backend's order status. The gateway treats it as an opaque
// string: it reads it and looks up what may happen next, nothing more.
type Status string

const (
	StatusPending                = Status("pending")
	StatusAccepted               = Status("accepted")
	StatusConfirmed              = Status("confirmed")
	StatusProcessing             = Status("processing")
	StatusInProduction           = Status("in_production")
	StatusReadyForDelivery       = Status("ready_for_delivery")
	StatusShipped                = Status("shipped")
	StatusAssignedToTransporter  = Status("assigned_to_transporter")
	StatusAcceptedByTransporter  = Status("accepted_by_transporter")
	StatusRejectedByTransporter  = Status("rejected_by_transporter")
	StatusInTransit              = Status("in_transit")
	StatusDelivered              = Status("delivered")
	StatusCertified              = Status("certified")
	StatusDisputed               = Status("disputed")
	StatusReturnRequested        = Status("return_requested")
	StatusReturnToWholesaler     = Status("return_to_wholesaler")
	StatusReturnAccepted         = Status("return_accepted")
	StatusReturnRejected         = Status("return_rejected")
	StatusCancelled              = Status("cancelled")
	StatusCancelledByWholesaler  = Status("cancelled_by_wholesaler")
	StatusCancelledByTransporter = Status("cancelled_by_transporter")
	StatusCancelledByRetailer    = Status("cancelled_by_retailer")
	StatusRejected               = Status("rejected")
)

var knownStatuses = map[Status]struct{}{
	StatusPending: {}, StatusAccepted: {}, StatusConfirmed: {}, StatusProcessing: {},
	StatusInProduction: {}, StatusReadyForDelivery: {}, StatusShipped: {},
	StatusAssignedToTransporter: {}, StatusAcceptedByTransporter: {}, StatusRejectedByTransporter: {},
	StatusInTransit: {}, StatusDelivered: {}, StatusCertified: {}, StatusDisputed: {},
	StatusReturnRequested: {}, StatusReturnToWholesaler: {}, StatusReturnAccepted: {}, StatusReturnRejected: {},
	StatusCancelled: {}, StatusCancelledByWholesaler: {}, StatusCancelledByTransporter: {},
	StatusCancelledByRetailer: {}, StatusRejected: {},
}

func (s Status) Known() bool {
	_, ok := knownStatuses[s]
	return ok
}

// Normalize lower-cases and trims a status as received from the wire.
func (s Status) Normalize() Status {
	return Status(strings.ToLower(strings.TrimSpace(string(s))))
}

// PartyRef points at another user of the platform. The backend sends either
// null, a bare id string or a populated object, so all three are accepted.
type PartyRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (p *PartyRef) Empty() bool {
	return p == nil || strings.TrimSpace(p.ID) == ""
}

func (p *PartyRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = PartyRef{}
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*p = PartyRef{ID: id}
		return nil
	}

	var raw struct {
		MongoID      string `json:"_id"`
		ID           string `json:"id"`
		Name         string `json:"name"`
		BusinessName string `json:"businessName"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := raw.MongoID
	if id == "" {
		id = raw.ID
	}
	name := raw.Name
	if name == "" {
		name = raw.BusinessName
	}
	*p = PartyRef{ID: id, Name: name, Email: raw.Email, Phone: raw.Phone}
	return nil
}

type LineItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Product     json.RawMessage `json:"product"`
		ProductID   string          `json:"productId"`
		ProductName string          `json:"productName"`
		Name        string          `json:"name"`
		Quantity    float64         `json:"quantity"`
		Price       float64         `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	item := LineItem{
		ProductID:   raw.ProductID,
		ProductName: raw.ProductName,
		Quantity:    raw.Quantity,
		Price:       raw.Price,
	}
	if item.ProductName == "" {
		item.ProductName = raw.Name
	}
	if len(raw.Product) > 0 {
		var product PartyRef
		if err := json.Unmarshal(raw.Product, &product); err != nil {
			return err
		}
		if item.ProductID == "" {
			item.ProductID = product.ID
		}
		if item.ProductName == "" {
			item.ProductName = product.Name
		}
	}

	*li = item
	return nil
}

type Order struct {
	ID              string     `json:"id"`
	OrderNumber     string     `json:"orderNumber,omitempty"`
	Status          Status     `json:"status"`
	Transporter     *PartyRef  `json:"transporter,omitempty"`
	Wholesaler      *PartyRef  `json:"wholesaler,omitempty"`
	Retailer        *PartyRef  `json:"retailer,omitempty"`
	Supplier        *PartyRef  `json:"supplier,omitempty"`
	Items           []LineItem `json:"items"`
	TotalAmount     float64    `json:"totalAmount"`
	DeliveryAddress string     `json:"deliveryAddress,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID         string          `json:"_id"`
		ID              string          `json:"id"`
		OrderNumber     string          `json:"orderNumber"`
		Status          Status          `json:"status"`
		Transporter     *PartyRef       `json:"transporter"`
		Wholesaler      *PartyRef       `json:"wholesaler"`
		Retailer        *PartyRef       `json:"retailer"`
		Supplier        *PartyRef       `json:"supplier"`
		Items           []LineItem      `json:"items"`
		Products        []LineItem      `json:"products"`
		TotalAmount     float64         `json:"totalAmount"`
		TotalPrice      float64         `json:"totalPrice"`
		DeliveryAddress json.RawMessage `json:"deliveryAddress"`
		Notes           string          `json:"notes"`
		CreatedAt       time.Time       `json:"createdAt"`
		UpdatedAt       time.Time       `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	order := Order{
		ID:          raw.MongoID,
		OrderNumber: raw.OrderNumber,
		Status:      raw.Status.Normalize(),
		Transporter: emptyToNil(raw.Transporter),
		Wholesaler:  emptyToNil(raw.Wholesaler),
		Retailer:    emptyToNil(raw.Retailer),
		Supplier:    emptyToNil(raw.Supplier),
		Items:       raw.Items,
		TotalAmount: raw.TotalAmount,
		Notes:       raw.Notes,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}
	if order.ID == "" {
		order.ID = raw.ID
	}
	if len(order.Items) == 0 {
		order.Items = raw.Products
	}
	if order.TotalAmount == 0 {
		order.TotalAmount = raw.TotalPrice
	}
	order.DeliveryAddress = decodeAddress(raw.DeliveryAddress)

	*o = order
	return nil
}

func emptyToNil(p *PartyRef) *PartyRef {
	if p.Empty() {
		return nil
	}
	return p
}

// decodeAddress flattens either a plain string or a structured address.
func decodeAddress(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}

	var addr struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
		Zip     string `json:"zipCode"`
	}
	if err := json.Unmarshal(data, &addr); err != nil {
		return ""
	}

	parts := make([]string, 0, 5)
	for _, p := range []string{addr.Street, addr.City, addr.State, addr.Zip, addr.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

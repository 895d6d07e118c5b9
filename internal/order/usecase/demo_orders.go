package usecase

import (
	"strconv"
	"time"

	"mytrade/internal/domain"
	"mytrade/internal/order/view"
)

// demoOrders builds placeholder orders for a screen whose backend is down.
// They are only served when demo mode is switched on and always carry the
// demo flag, so clients can tell them apart.
func demoOrders(v view.View, viewer domain.Viewer) []domain.Order {
	now := time.Now().UTC().Truncate(time.Minute)
	me := &domain.PartyRef{ID: viewer.ID, Name: viewer.Name}

	supplier := &domain.PartyRef{ID: "demo-supplier", Name: "Green Valley Farms"}
	wholesaler := &domain.PartyRef{ID: "demo-wholesaler", Name: "Central Wholesale"}
	retailer := &domain.PartyRef{ID: "demo-retailer", Name: "Corner Market"}

	order := func(n int, status domain.Status, mod func(*domain.Order)) domain.Order {
		o := domain.Order{
			ID:          "demo-" + string(v.Name) + "-" + strconv.Itoa(n),
			OrderNumber: "DEMO-" + strconv.Itoa(n),
			Status:      status,
			Wholesaler:  wholesaler,
			Retailer:    retailer,
			Supplier:    supplier,
			Items: []domain.LineItem{
				{ProductID: "demo-rice", ProductName: "Basmati rice 25kg", Quantity: 4, Price: 31.5},
				{ProductID: "demo-oil", ProductName: "Sunflower oil 5L", Quantity: 10, Price: 8.2},
			},
			TotalAmount:     208,
			DeliveryAddress: "12 Market Street, Springfield",
			CreatedAt:       now.Add(-time.Duration(n) * 26 * time.Hour),
			UpdatedAt:       now.Add(-time.Duration(n) * time.Hour),
		}
		if mod != nil {
			mod(&o)
		}
		return o
	}

	switch v.Name {
	case view.Supplier, view.Shipments:
		withMe := func(o *domain.Order) { o.Supplier = me }
		return []domain.Order{
			order(1, domain.StatusPending, withMe),
			order(2, domain.StatusInProduction, withMe),
			order(3, domain.StatusReadyForDelivery, withMe),
			order(4, domain.StatusShipped, withMe),
		}
	case view.Wholesaler:
		withMe := func(o *domain.Order) { o.Wholesaler = me; o.Supplier = nil }
		return []domain.Order{
			order(1, domain.StatusPending, withMe),
			order(2, domain.StatusProcessing, withMe),
			order(3, domain.StatusDelivered, withMe),
		}
	case view.WholesalerOutgoing:
		withMe := func(o *domain.Order) { o.Wholesaler = me; o.Retailer = nil }
		return []domain.Order{
			order(1, domain.StatusPending, withMe),
			order(2, domain.StatusConfirmed, withMe),
		}
	case view.Transporter:
		return []domain.Order{
			order(1, domain.StatusAssignedToTransporter, nil),
			order(2, domain.StatusInTransit, func(o *domain.Order) { o.Transporter = me }),
		}
	case view.Retailer:
		withMe := func(o *domain.Order) { o.Retailer = me }
		return []domain.Order{
			order(1, domain.StatusInTransit, withMe),
			order(2, domain.StatusDelivered, withMe),
		}
	default:
		return []domain.Order{}
	}
}

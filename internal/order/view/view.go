// Package view names the order screens the gateway serves. A view binds a
// backend list endpoint to the perspective the policy table is read from and
// the role allowed to open it.
package view

import (
	"fmt"
	"slices"
	"strings"

	"mytrade/internal/backend"
	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
	"mytrade/internal/policy"
)

type Name string

const (
	Supplier           = Name("supplier")
	Shipments          = Name("shipments")
	Wholesaler         = Name("wholesaler")
	WholesalerOutgoing = Name("wholesaler_outgoing")
	Transporter        = Name("transporter")
	Retailer           = Name("retailer")
)

type View struct {
	Name        Name
	Path        string
	Perspective policy.Perspective
	Role        domain.Role
	// Statuses restricts the backend list; empty keeps every order.
	Statuses []domain.Status
}

var views = map[Name]View{
	Supplier: {
		Name:        Supplier,
		Path:        backend.SupplierOrdersPath,
		Perspective: policy.Perspective{Role: domain.RoleSupplier},
		Role:        domain.RoleSupplier,
	},
	Shipments: {
		Name:        Shipments,
		Path:        backend.SupplierOrdersPath,
		Perspective: policy.Perspective{Role: domain.RoleSupplier},
		Role:        domain.RoleSupplier,
		Statuses:    []domain.Status{domain.StatusReadyForDelivery, domain.StatusShipped, domain.StatusDelivered},
	},
	Wholesaler: {
		Name:        Wholesaler,
		Path:        backend.WholesalerOrdersPath,
		Perspective: policy.Perspective{Role: domain.RoleWholesaler},
		Role:        domain.RoleWholesaler,
	},
	WholesalerOutgoing: {
		Name:        WholesalerOutgoing,
		Path:        backend.WholesalerOutgoingOrdersPath,
		Perspective: policy.Perspective{Role: domain.RoleWholesaler, Outgoing: true},
		Role:        domain.RoleWholesaler,
	},
	Transporter: {
		Name:        Transporter,
		Path:        backend.TransporterOrdersPath,
		Perspective: policy.Perspective{Role: domain.RoleTransporter},
		Role:        domain.RoleTransporter,
	},
	Retailer: {
		Name:        Retailer,
		Path:        backend.RetailerOrdersPath,
		Perspective: policy.Perspective{Role: domain.RoleRetailer},
		Role:        domain.RoleRetailer,
	},
}

func Lookup(name string) (View, error) {
	v, ok := views[Name(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return View{}, apperrors.NewNotFoundError(fmt.Sprintf("unknown view %q", name))
	}
	return v, nil
}

// All returns every view sorted by name.
func All() []View {
	all := make([]View, 0, len(views))
	for _, v := range views {
		all = append(all, v)
	}
	slices.SortFunc(all, func(a, b View) int { return strings.Compare(string(a.Name), string(b.Name)) })
	return all
}

func (v View) Authorize(viewer domain.Viewer) error {
	if viewer.Role != v.Role {
		return apperrors.NewForbiddenError(fmt.Sprintf("view %s is only available to %s users", v.Name, v.Role))
	}
	return nil
}

func (v View) Includes(status domain.Status) bool {
	return len(v.Statuses) == 0 || slices.Contains(v.Statuses, status.Normalize())
}

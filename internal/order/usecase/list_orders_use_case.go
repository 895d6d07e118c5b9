package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"mytrade/internal/domain"
	"mytrade/internal/dto"
	apperrors "mytrade/internal/errors"
	"mytrade/internal/order/view"
	"mytrade/internal/policy"
)

type PresenceReader interface {
	OnlineMany(ctx context.Context, userIDs []string) (map[string]bool, error)
}

type ListQuery struct {
	View   view.View
	Viewer domain.Viewer
	Token  string
	// Status is a comma separated list; empty or "all" keeps every status.
	Status string
	// Query matches order ids, counterparty names and item names.
	Query string
}

type ListOrdersUseCase struct {
	fetcher     *retryingFetcher
	presence    PresenceReader
	logger      *zap.Logger
	demoEnabled bool
}

func NewListOrdersUseCase(
	lister OrderLister,
	presence PresenceReader,
	logger *zap.Logger,
	maxAttempts int,
	demoEnabled bool,
) *ListOrdersUseCase {
	return &ListOrdersUseCase{
		fetcher:     newRetryingFetcher(lister, logger, maxAttempts),
		presence:    presence,
		logger:      logger,
		demoEnabled: demoEnabled,
	}
}

func (uc *ListOrdersUseCase) List(ctx context.Context, q ListQuery) (*dto.OrderList, error) {
	if err := q.View.Authorize(q.Viewer); err != nil {
		return nil, err
	}

	logger := uc.logger.With(zap.String("view", string(q.View.Name)), zap.String("viewerId", q.Viewer.ID))

	demo := false
	orders, err := uc.fetcher.fetch(ctx, q.Token, q.View.Path)
	if err != nil {
		if !uc.demoEnabled || !demoEligible(err) {
			return nil, err
		}
		logger.Warn("serving demo orders, backend failed", zap.Error(err))
		orders = demoOrders(q.View, q.Viewer)
		demo = true
	}

	statuses := parseStatusFilter(q.Status)
	query := strings.ToLower(strings.TrimSpace(q.Query))

	filtered := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !q.View.Includes(o.Status) {
			continue
		}
		if len(statuses) > 0 && !statuses[o.Status] {
			continue
		}
		if query != "" && !matches(o, query) {
			continue
		}
		filtered = append(filtered, o)
	}

	result := &dto.OrderList{
		View:   string(q.View.Name),
		Orders: uc.decorate(ctx, filtered, q, demo),
		Demo:   demo,
	}

	logger.Debug("orders listed",
		zap.Int("fetched", len(orders)),
		zap.Int("returned", len(result.Orders)),
		zap.Bool("demo", demo),
	)

	return result, nil
}

func (uc *ListOrdersUseCase) decorate(ctx context.Context, orders []domain.Order, q ListQuery, demo bool) []dto.OrderView {
	var online map[string]bool
	if q.View.Perspective.Outgoing && !demo {
		online = uc.supplierPresence(ctx, orders)
	}

	views := make([]dto.OrderView, 0, len(orders))
	for _, o := range orders {
		ov := dto.OrderView{
			Order:        o,
			Presentation: policy.Present(o.Status),
			Actions:      []policy.Action{},
			Demo:         demo,
		}
		if !demo {
			if actions := policy.ForOrder(o, q.View.Perspective, q.Viewer); actions != nil {
				ov.Actions = actions
			}
		}
		if online != nil && !o.Supplier.Empty() {
			isOnline := online[o.Supplier.ID]
			ov.SupplierOnline = &isOnline
		}
		views = append(views, ov)
	}
	return views
}

// supplierPresence returns nil when presence cannot be read; the list is
// still served, just without the online flag.
func (uc *ListOrdersUseCase) supplierPresence(ctx context.Context, orders []domain.Order) map[string]bool {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if !o.Supplier.Empty() {
			ids = append(ids, o.Supplier.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	online, err := uc.presence.OnlineMany(ctx, ids)
	if err != nil {
		uc.logger.Warn("reading supplier presence failed", zap.Int("suppliers", len(ids)), zap.Error(err))
		return nil
	}
	return online
}

// demoEligible reports whether a failure may be masked with demo data. An
// expired session never is.
func demoEligible(err error) bool {
	if _, ok := apperrors.IsNetworkError(err); ok {
		return true
	}
	_, ok := apperrors.IsServerError(err)
	return ok
}

func parseStatusFilter(raw string) map[domain.Status]bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil
	}
	statuses := make(map[domain.Status]bool)
	for _, part := range strings.Split(raw, ",") {
		s := domain.Status(part).Normalize()
		if s != "" {
			statuses[s] = true
		}
	}
	if len(statuses) == 0 {
		return nil
	}
	return statuses
}

func matches(o domain.Order, query string) bool {
	candidates := []string{o.ID, o.OrderNumber, o.DeliveryAddress}
	for _, p := range []*domain.PartyRef{o.Supplier, o.Wholesaler, o.Retailer, o.Transporter} {
		if p != nil {
			candidates = append(candidates, p.Name, p.Email)
		}
	}
	for _, item := range o.Items {
		candidates = append(candidates, item.ProductName)
	}

	for _, c := range candidates {
		if c != "" && strings.Contains(strings.ToLower(c), query) {
			return true
		}
	}
	return false
}

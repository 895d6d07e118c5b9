package product

import (
	"context"
	"strings"

	"mytrade/internal/domain"
)

type productService struct {
	catalog Catalog
}

func NewService(catalog Catalog) Service {
	return &productService{catalog: catalog}
}

// GetProducts filters the backend list. When ids are given, the ids with no
// matching product are reported back in request order.
func (s *productService) GetProducts(ctx context.Context, token string, filter Filter) ([]domain.Product, []string, error) {
	all, err := s.catalog.ListProducts(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	wanted := make(map[string]struct{}, len(filter.IDs))
	for _, id := range filter.IDs {
		wanted[id] = struct{}{}
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	category := strings.TrimSpace(filter.Category)

	found := make([]domain.Product, 0, len(all))
	foundSet := make(map[string]struct{}, len(all))
	for _, p := range all {
		if len(wanted) > 0 {
			if _, ok := wanted[p.ID]; !ok {
				continue
			}
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		found = append(found, p)
		foundSet[p.ID] = struct{}{}
	}

	var notFoundIDs []string
	for _, id := range filter.IDs {
		if _, ok := foundSet[id]; !ok {
			notFoundIDs = append(notFoundIDs, id)
		}
	}

	return found, notFoundIDs, nil
}

func matchesQuery(p domain.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.Category), query)
}

package product

import (
	"context"

	"mytrade/internal/domain"
)

type SearchUseCase interface {
	SearchProducts(ctx context.Context, token string, req SearchProductsRequest) (*SearchProductsResponse, error)
}

type Service interface {
	GetProducts(ctx context.Context, token string, filter Filter) (found []domain.Product, notFoundIDs []string, err error)
}

// Catalog is the backend product list.
type Catalog interface {
	ListProducts(ctx context.Context, token string) ([]domain.Product, error)
}

type SessionExpirer interface {
	ExpireSession(ctx context.Context)
}

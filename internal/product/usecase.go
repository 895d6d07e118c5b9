package product

import (
	"context"
	"time"
)

type searchUseCase struct {
	service Service
}

func NewSearchUseCase(service Service) SearchUseCase {
	return &searchUseCase{service: service}
}

func (uc *searchUseCase) SearchProducts(ctx context.Context, token string, req SearchProductsRequest) (*SearchProductsResponse, error) {
	found, notFoundIDs, err := uc.service.GetProducts(ctx, token, Filter{
		IDs:      req.ProductIDs,
		Query:    req.Query,
		Category: req.Category,
	})
	if err != nil {
		return nil, err
	}

	products := make([]ProductDTO, 0, len(found))
	for _, p := range found {
		available := p.AvailableStock()
		products = append(products, ProductDTO{
			ID:             p.ID,
			Name:           p.Name,
			Description:    p.Description,
			Category:       p.Category,
			Price:          p.Price,
			Stock:          p.Stock,
			AvailableStock: available,
			HasStock:       available > 0,
			Unit:           p.Unit,
			SupplierID:     p.SupplierID,
		})
	}

	if notFoundIDs == nil {
		notFoundIDs = []string{}
	}

	return &SearchProductsResponse{
		Products:  products,
		NotFound:  notFoundIDs,
		Timestamp: time.Now().UTC(),
	}, nil
}

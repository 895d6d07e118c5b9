package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
)

const productsPath = "/api/products"

func (c *Client) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	env, err := c.get(ctx, token, productsPath)
	if err != nil {
		return nil, err
	}

	raw := env.list("products")
	if raw == nil {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, apperrors.NewServerError(0, fmt.Sprintf("decoding products: %v", err))
	}
	return products, nil
}

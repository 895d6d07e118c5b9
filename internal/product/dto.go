package product

import "time"

type SearchProductsRequest struct {
	ProductIDs []string
	Query      string
	Category   string
}

type SearchProductsResponse struct {
	TraceID   string       `json:"traceId,omitempty"`
	Products  []ProductDTO `json:"products"`
	NotFound  []string     `json:"notFound"`
	Timestamp time.Time    `json:"timestamp"`
}

type ProductDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Category       string  `json:"category,omitempty"`
	Price          float64 `json:"price"`
	Stock          *int    `json:"stock"`
	AvailableStock int     `json:"availableStock"`
	HasStock       bool    `json:"hasStock"`
	Unit           string  `json:"unit,omitempty"`
	SupplierID     string  `json:"supplierId,omitempty"`
}

// Filter narrows the backend list. Zero fields match everything.
type Filter struct {
	IDs      []string
	Query    string
	Category string
}

package domain

import "encoding/json"

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Stock       *int    `json:"stock,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	SupplierID  string  `json:"supplierId,omitempty"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID     string    `json:"_id"`
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Category    string    `json:"category"`
		Price       float64   `json:"price"`
		Stock       *int      `json:"stock"`
		Quantity    *int      `json:"quantity"`
		Unit        string    `json:"unit"`
		Supplier    *PartyRef `json:"supplier"`
		SupplierID  string    `json:"supplierId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	product := Product{
		ID:          raw.MongoID,
		Name:        raw.Name,
		Description: raw.Description,
		Category:    raw.Category,
		Price:       raw.Price,
		Stock:       raw.Stock,
		Unit:        raw.Unit,
		SupplierID:  raw.SupplierID,
	}
	if product.ID == "" {
		product.ID = raw.ID
	}
	if product.Stock == nil {
		product.Stock = raw.Quantity
	}
	if product.SupplierID == "" && !raw.Supplier.Empty() {
		product.SupplierID = raw.Supplier.ID
	}

	*p = product
	return nil
}

// AvailableStock treats an unknown stock as zero.
func (p Product) AvailableStock() int {
	if p.Stock == nil || *p.Stock < 0 {
		return 0
	}
	return *p.Stock
}

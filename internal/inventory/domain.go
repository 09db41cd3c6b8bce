package inventory

// Product is a stocked item.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	MinStockLevel int     `json:"minStockLevel"`
	Supplier      string  `json:"supplier,omitempty"`
}

// LowStock reports whether the product is at or below its minimum level.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStockLevel
}

// Package model defines domain types used by the storefront.
package model

// Product is a purchasable catalog entry. Stock nil means unlimited.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	PriceNumber int64  `json:"priceNumber"`
	Unit        string `json:"unit"`
	Image       string `json:"image"`
	Badge       string `json:"badge,omitempty"`
	Stock       *int   `json:"stock,omitempty"`
	Award       bool   `json:"award,omitempty"`
}

// ProductInput carries every editable Product field except the id.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	PriceNumber int64  `json:"priceNumber"`
	Unit        string `json:"unit"`
	Image       string `json:"image"`
	Badge       string `json:"badge,omitempty"`
	Stock       *int   `json:"stock,omitempty"`
	Award       bool   `json:"award,omitempty"`
}

// WithID builds a Product from the input under the given id.
func (in ProductInput) WithID(id string) Product {
	return Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		PriceNumber: in.PriceNumber,
		Unit:        in.Unit,
		Image:       in.Image,
		Badge:       in.Badge,
		Stock:       cloneInt(in.Stock),
		Award:       in.Award,
	}
}

// Clone returns a deep copy so callers cannot mutate store state through Stock.
func (p Product) Clone() Product {
	p.Stock = cloneInt(p.Stock)
	return p
}

// CartItem is a product snapshot plus a quantity of at least one.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is PriceNumber times Quantity.
func (c CartItem) Subtotal() int64 {
	return c.PriceNumber * int64(c.Quantity)
}

// IntPtr is a helper for optional stock counts.
func IntPtr(n int) *int { return &n }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

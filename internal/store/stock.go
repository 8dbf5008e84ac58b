package store

import "github.com/fairyhunter13/vegifarm-storefront/internal/model"

// StockStatus is the caller-side purchase gate for a product.
type StockStatus int

const (
	Unlimited StockStatus = iota
	InStock
	LowStock
	SoldOut
)

// LowStockThreshold is the highest count that still warns the shopper.
const LowStockThreshold = 3

// RemainingThreshold is the highest count shown as "remaining N" on product cards.
const RemainingThreshold = 5

func (s StockStatus) String() string {
	switch s {
	case InStock:
		return "in_stock"
	case LowStock:
		return "low_stock"
	case SoldOut:
		return "sold_out"
	default:
		return "unlimited"
	}
}

// CheckStock classifies p for the add-to-cart gate. The store never enforces it.
func CheckStock(p model.Product) StockStatus {
	if p.Stock == nil {
		return Unlimited
	}
	switch n := *p.Stock; {
	case n <= 0:
		return SoldOut
	case n <= LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// StockLabel returns the translation key and params describing p's availability.
func StockLabel(p model.Product) (string, map[string]any) {
	if p.Stock == nil {
		return "products.inStock", nil
	}
	switch n := *p.Stock; {
	case n <= 0:
		return "products.soldOut", nil
	case n <= RemainingThreshold:
		return "products.remaining", map[string]any{"count": n}
	default:
		return "products.inStock", nil
	}
}

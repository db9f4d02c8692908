package cart

import (
	"time"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemWithProduct is a cart row joined with the product as it was when the
// cart was last read.
type ItemWithProduct struct {
	Item
	Product catalog.Product `json:"product"`
}

func (i ItemWithProduct) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ClampQuantity bounds a requested quantity to [1, stock]. It returns 0 when
// nothing is in stock.
func ClampQuantity(q, stock int) int {
	if stock < 1 {
		return 0
	}
	if q < 1 {
		return 1
	}
	if q > stock {
		return stock
	}
	return q
}

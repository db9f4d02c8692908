package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
	IsActive    bool    `json:"is_active"`
}

type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	Description    string            `json:"description"`
	SKU            string            `json:"sku"`
	Price          decimal.Decimal   `json:"price"`
	CompareAtPrice *decimal.Decimal  `json:"compare_at_price"`
	StockQuantity  int               `json:"stock_quantity"`
	CategoryID     *string           `json:"category_id"`
	Images         []string          `json:"images"`
	Specifications map[string]string `json:"specifications"`
	IsActive       bool              `json:"is_active"`
	IsFeatured     bool              `json:"is_featured"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type ProductWithCategory struct {
	Product
	Category *Category `json:"category"`
}

func (p Product) InStock() bool { return p.StockQuantity > 0 }

// DiscountPercent is CalculateDiscount applied to the product's own prices.
func (p Product) DiscountPercent() int { return CalculateDiscount(p.Price, p.CompareAtPrice) }

// PrimaryImage is the first image URL, or "" when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

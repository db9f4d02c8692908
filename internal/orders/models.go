package orders

import (
	"time"

	"github.com/ariefcatur/go-storefront/internal/address"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	OrderNumber       string          `json:"order_number"`
	Status            Status          `json:"status"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	Total             decimal.Decimal `json:"total"`
	ShippingAddressID *string         `json:"shipping_address_id"`
	// frozen at checkout; later edits to the address do not show here
	ShippingAddress address.Address `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductSnapshot is what the customer saw when buying.
type ProductSnapshot struct {
	Name  string          `json:"name"`
	Slug  string          `json:"slug"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

func SnapshotOf(p catalog.Product) ProductSnapshot {
	return ProductSnapshot{Name: p.Name, Slug: p.Slug, SKU: p.SKU, Price: p.Price, Image: p.PrimaryImage()}
}

type OrderItem struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"order_id"`
	ProductID       string          `json:"product_id"`
	ProductSnapshot ProductSnapshot `json:"product_snapshot"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	// live product, filled on reads
	Product *catalog.Product `json:"product,omitempty"`
}

type OrderWithItems struct {
	Order
	Items []OrderItem `json:"order_items"`
}

type ItemInput struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
	Snapshot  ProductSnapshot
}

func (i ItemInput) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CreateOrderInput struct {
	UserID            string
	Items             []ItemInput
	ShippingAddressID string
	PaymentMethod     string
	Subtotal          decimal.Decimal
	Tax               decimal.Decimal
	ShippingCost      decimal.Decimal
	Total             decimal.Decimal
	Notes             string
}

// StatusView is the cached projection served by the status endpoint.
type StatusView struct {
	OrderNumber   string        `json:"order_number"`
	UserID        string        `json:"user_id"`
	Status        Status        `json:"status"`
	StatusLabel   string        `json:"status_label"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (o Order) StatusView() StatusView {
	return StatusView{
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		StatusLabel:   o.Status.Label(),
		PaymentStatus: o.PaymentStatus,
		UpdatedAt:     o.UpdatedAt,
	}
}

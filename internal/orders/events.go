package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced          = "OrderPlaced"
	EventOrderStatusChanged   = "OrderStatusChanged"
	EventPaymentStatusChanged = "PaymentStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemPrice struct {
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	UserID        string          `json:"user_id"`
	Items         []ItemPrice     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	ShipTo        string          `json:"ship_to"`
	PlacedAt      time.Time       `json:"placed_at"`
}

type OrderStatusChangedPayload struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
	ChangedAt   time.Time `json:"changed_at"`
}

type PaymentStatusChangedPayload struct {
	OrderID     string        `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	From        PaymentStatus `json:"from"`
	To          PaymentStatus `json:"to"`
	ChangedAt   time.Time     `json:"changed_at"`
}

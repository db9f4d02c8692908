package orders

import "github.com/shopspring/decimal"

// Pricing derives checkout amounts from a cart subtotal.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

type Quote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	// amount still needed for free shipping; zero once it applies
	FreeShippingRemaining decimal.Decimal `json:"free_shipping_remaining"`
}

// Quote applies free shipping at or above the threshold and taxes the
// subtotal only. Tax is rounded to cents; Total is the exact sum.
func (p Pricing) Quote(subtotal decimal.Decimal) Quote {
	q := Quote{Subtotal: subtotal, ShippingCost: decimal.Zero, FreeShippingRemaining: decimal.Zero}
	if subtotal.IsPositive() && subtotal.LessThan(p.FreeShippingThreshold) {
		q.ShippingCost = p.FlatShippingFee
		q.FreeShippingRemaining = p.FreeShippingThreshold.Sub(subtotal)
	}
	q.Tax = subtotal.Mul(p.TaxRate).Round(2)
	q.Total = q.Subtotal.Add(q.Tax).Add(q.ShippingCost)
	return q
}

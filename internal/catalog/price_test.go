package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name      string
		price     string
		compareAt *decimal.Decimal
		want      int
	}{
		{"equal prices", "1000", decPtr("1000"), 0},
		{"half off", "1000", decPtr("2000"), 50},
		{"no compare-at", "1000", nil, 0},
		{"compare-at below price", "1000", decPtr("800"), 0},
		{"zero compare-at", "0", decPtr("0"), 0},
		{"rounds down", "999", decPtr("1500"), 33},
		{"rounds half up", "995", decPtr("1000"), 1},
		{"fractional prices", "74.99", decPtr("99.99"), 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateDiscount(dec(tt.price), tt.compareAt))
		})
	}
}

func TestProductDiscountPercent(t *testing.T) {
	p := Product{Price: dec("1500"), CompareAtPrice: decPtr("2000")}
	assert.Equal(t, 25, p.DiscountPercent())
}

func TestFormatter(t *testing.T) {
	f, err := NewFormatter("INR", "en-US")
	require.NoError(t, err)

	assert.Equal(t, "INR", f.Currency())
	assert.Equal(t, "₹1,234", f.FormatPrice(dec("1234.4")))
	assert.Equal(t, "₹1,235", f.FormatPrice(dec("1234.5")))
	assert.Equal(t, "₹0", f.FormatPrice(decimal.Zero))
	assert.Equal(t, "-₹50", f.FormatPrice(dec("-50")))

	usd, err := NewFormatter("USD", "en-US")
	require.NoError(t, err)
	assert.Equal(t, "$1,234,567", usd.FormatPrice(dec("1234567")))
}

func TestNewFormatterRejectsUnknown(t *testing.T) {
	_, err := NewFormatter("NOPE", "en-US")
	assert.Error(t, err)

	_, err = NewFormatter("INR", "not a locale!")
	assert.Error(t, err)
}

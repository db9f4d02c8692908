package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var hundred = decimal.NewFromInt(100)

// CalculateDiscount returns the whole percent saved against compareAt, or 0
// when there is no compare-at price above price.
func CalculateDiscount(price decimal.Decimal, compareAt *decimal.Decimal) int {
	if compareAt == nil || !compareAt.IsPositive() || compareAt.LessThanOrEqual(price) {
		return 0
	}
	pct := compareAt.Sub(price).Div(*compareAt).Mul(hundred).Round(0)
	return int(pct.IntPart())
}

// Formatter renders whole-unit prices with locale digit grouping.
type Formatter struct {
	unit    currency.Unit
	symbol  string
	printer *message.Printer
}

func NewFormatter(code, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	printer := message.NewPrinter(tag)
	sym := printer.Sprint(currency.NarrowSymbol(unit))
	if sym == unit.String() {
		// no narrow symbol; render as "XYZ 1,234"
		sym += " "
	}
	return &Formatter{unit: unit, symbol: sym, printer: printer}, nil
}

func (f *Formatter) Currency() string { return f.unit.String() }

// FormatPrice rounds to whole units, as the storefront shows prices.
func (f *Formatter) FormatPrice(amount decimal.Decimal) string {
	whole := amount.Round(0).IntPart()
	sign := ""
	if whole < 0 {
		sign, whole = "-", -whole
	}
	return sign + f.symbol + f.printer.Sprint(number.Decimal(whole))
}

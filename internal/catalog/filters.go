package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Filters are independent and combined with AND. Zero values mean "no filter".
type Filters struct {
	CategoryID string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	InStock    bool
	Featured   bool
}

// ParseFilters reads product filters from a query string. Malformed values
// are ignored rather than rejected.
func ParseFilters(q url.Values) Filters {
	f := Filters{
		CategoryID: strings.TrimSpace(q.Get("category_id")),
		Search:     strings.TrimSpace(q.Get("q")),
		MinPrice:   parsePrice(q.Get("min_price")),
		MaxPrice:   parsePrice(q.Get("max_price")),
	}
	if f.Search == "" {
		f.Search = strings.TrimSpace(q.Get("search"))
	}
	f.InStock, _ = strconv.ParseBool(q.Get("in_stock"))
	f.Featured, _ = strconv.ParseBool(q.Get("featured"))
	return f
}

func parsePrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func productQuery(f Filters) (string, []any) {
	var (
		where = []string{"p.is_active = true"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryID != "" {
		where = append(where, "p.category_id = "+arg(f.CategoryID))
	}
	if f.MinPrice != nil {
		where = append(where, "p.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "p.price <= "+arg(*f.MaxPrice))
	}
	if f.Search != "" {
		p := arg("%" + likeEscaper.Replace(f.Search) + "%")
		where = append(where, "(p.name ILIKE "+p+" OR COALESCE(p.description, '') ILIKE "+p+")")
	}
	if f.InStock {
		where = append(where, "p.stock_quantity > 0")
	}
	if f.Featured {
		where = append(where, "p.is_featured = true")
	}

	sql := `SELECT ` + ProductColumns + `, ` + categoryJoinColumns + `
	        FROM products p LEFT JOIN categories c ON c.id = p.category_id
	        WHERE ` + strings.Join(where, " AND ") + `
	        ORDER BY p.created_at DESC`
	return sql, args
}

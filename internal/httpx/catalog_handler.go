package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type CatalogReader interface {
	Products(ctx context.Context, f catalog.Filters) ([]catalog.ProductWithCategory, error)
	FeaturedProducts(ctx context.Context) ([]catalog.ProductWithCategory, error)
	ProductBySlug(ctx context.Context, slug string) (*catalog.ProductWithCategory, error)
	ProductByID(ctx context.Context, id string) (*catalog.Product, error)
	Categories(ctx context.Context) ([]catalog.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*catalog.Category, error)
}

type CatalogHandler struct {
	Catalog CatalogReader
	Prices  *catalog.Formatter
	Log     *slog.Logger
}

type productView struct {
	catalog.ProductWithCategory
	DisplayPrice    string `json:"display_price"`
	Currency        string `json:"currency,omitempty"`
	DiscountPercent int    `json:"discount_percent"`
	InStock         bool   `json:"in_stock"`
}

func (h *CatalogHandler) view(p catalog.ProductWithCategory) productView {
	v := productView{ProductWithCategory: p, DiscountPercent: p.DiscountPercent(), InStock: p.InStock()}
	if h.Prices != nil {
		v.DisplayPrice = h.Prices.FormatPrice(p.Price)
		v.Currency = h.Prices.Currency()
	}
	return v
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/featured", h.featured)
	r.Get("/products/{slug}", h.product)
	r.Get("/categories", h.categories)
	r.Get("/categories/{slug}", h.category)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.Products(r.Context(), catalog.ParseFilters(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.writeProducts(w, ps)
}

func (h *CatalogHandler) featured(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.FeaturedProducts(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.writeProducts(w, ps)
}

func (h *CatalogHandler) writeProducts(w http.ResponseWriter, ps []catalog.ProductWithCategory) {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, h.view(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) product(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.Catalog.ProductBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if p == nil {
		writeError(w, r, h.Log, apperr.NotFound("product", slug))
		return
	}
	writeJSON(w, http.StatusOK, h.view(*p))
}

func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// category returns the category with its active products.
func (h *CatalogHandler) category(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	c, err := h.Catalog.CategoryBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if c == nil {
		writeError(w, r, h.Log, apperr.NotFound("category", slug))
		return
	}
	ps, err := h.Catalog.Products(r.Context(), catalog.Filters{CategoryID: c.ID})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	views := make([]productView, 0, len(ps))
	for _, p := range ps {
		views = append(views, h.view(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": c, "products": views})
}

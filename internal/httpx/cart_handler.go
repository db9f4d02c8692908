package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductLookup interface {
	ProductByID(ctx context.Context, id string) (*catalog.Product, error)
}

type CartHandler struct {
	Sessions *session.Manager
	Products ProductLookup
	Log      *slog.Logger
}

type cartView struct {
	Items []cart.ItemWithProduct `json:"items"`
	Count int                    `json:"count"`
	Total decimal.Decimal        `json:"total"`
}

func viewOf(c *cart.Cart) cartView {
	return cartView{Items: c.Items(), Count: c.Count(), Total: c.Total()}
}

func (h *CartHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(withSession(h.Sessions, h.Log))
		r.Get("/cart", h.get)
		r.Post("/cart/items", h.add)
		r.Patch("/cart/items/{id}", h.update)
		r.Delete("/cart/items/{id}", h.remove)
		r.Delete("/cart", h.clear)
	})
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(session.FromContext(r.Context()).Cart))
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if _, ok := user(w, r); !ok {
		return
	}
	var req addItemReq
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Products.ProductByID(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if p == nil {
		writeError(w, r, h.Log, apperr.NotFound("product", req.ProductID))
		return
	}
	qty := cart.ClampQuantity(req.Quantity, p.StockQuantity)
	if qty == 0 {
		writeError(w, r, h.Log, apperr.Validation("%s is out of stock", p.Name))
		return
	}
	if err := s.Cart.Add(r.Context(), p.ID, qty); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

type updateItemReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if _, ok := user(w, r); !ok {
		return
	}
	var req updateItemReq
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	qty := req.Quantity
	for _, it := range s.Cart.Items() {
		if it.ID == id && qty > 0 {
			qty = max(cart.ClampQuantity(qty, it.Product.StockQuantity), 1)
		}
	}
	if err := s.Cart.UpdateQuantity(r.Context(), id, qty); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if err := s.Cart.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if _, ok := user(w, r); !ok {
		return
	}
	if err := s.Cart.Clear(r.Context()); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

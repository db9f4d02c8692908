package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/go-chi/chi/v5"
)

type Checkout interface {
	Summary(s *session.Session) orders.Quote
	PlaceOrder(ctx context.Context, s *session.Session, in checkout.PlaceOrderInput) (orders.Order, error)
}

type CheckoutHandler struct {
	Sessions *session.Manager
	Checkout Checkout
	Log      *slog.Logger
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(withSession(h.Sessions, h.Log))
		r.Get("/checkout/summary", h.summary)
		r.Post("/checkout", h.place)
	})
}

func (h *CheckoutHandler) summary(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"items": s.Cart.Items(),
		"count": s.Cart.Count(),
		"quote": h.Checkout.Summary(s),
	})
}

func (h *CheckoutHandler) place(w http.ResponseWriter, r *http.Request) {
	if _, ok := user(w, r); !ok {
		return
	}
	var in checkout.PlaceOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.IdempotencyKey = r.Header.Get("Idempotency-Key")

	o, err := h.Checkout.PlaceOrder(r.Context(), session.FromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

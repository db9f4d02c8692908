package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	GetOrders(ctx context.Context, userID string) ([]orders.OrderWithItems, error)
	GetOrderByNumberForUser(ctx context.Context, userID, number string) (*orders.OrderWithItems, error)
	GetOrderStatus(ctx context.Context, userID, number string) (orders.StatusView, error)
	UpdateOrderStatus(ctx context.Context, orderID string, to orders.Status) (orders.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID string, to orders.PaymentStatus) (orders.Order, error)
}

type OrdersHandler struct {
	Orders OrderService
	Log    *slog.Logger
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.list)
	r.Get("/orders/{number}", h.get)
	r.Get("/orders/{number}/status", h.status)
	r.Patch("/admin/orders/{id}/status", h.setStatus)
	r.Patch("/admin/orders/{id}/payment-status", h.setPaymentStatus)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := user(w, r)
	if !ok {
		return
	}
	out, err := h.Orders.GetOrders(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := user(w, r)
	if !ok {
		return
	}
	number := chi.URLParam(r, "number")
	o, err := h.Orders.GetOrderByNumberForUser(r.Context(), id.UserID, number)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if o == nil {
		writeError(w, r, h.Log, apperr.NotFound("order", number))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// status is the cached read path; admins may read any order.
func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	id, ok := user(w, r)
	if !ok {
		return
	}
	scope := id.UserID
	if id.IsAdmin() {
		scope = ""
	}
	v, err := h.Orders.GetOrderStatus(r.Context(), scope, chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	if !admin(w, r) {
		return
	}
	var req statusReq
	if !decodeJSON(w, r, &req) {
		return
	}
	o, err := h.Orders.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), orders.Status(req.Status))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) setPaymentStatus(w http.ResponseWriter, r *http.Request) {
	if !admin(w, r) {
		return
	}
	var req statusReq
	if !decodeJSON(w, r, &req) {
		return
	}
	o, err := h.Orders.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "id"), orders.PaymentStatus(req.Status))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Package checkout turns a session's cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", apperr.ErrValidation)

// Orders is the slice of *orders.Service checkout needs.
type Orders interface {
	CreateOrder(ctx context.Context, in orders.CreateOrderInput) (orders.Order, error)
	GetOrderByNumberForUser(ctx context.Context, userID, number string) (*orders.OrderWithItems, error)
}

type PlaceOrderInput struct {
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	// IdempotencyKey makes resubmits of the same checkout return the first order.
	IdempotencyKey string `json:"-"`
}

type Service struct {
	Orders  Orders
	Pricing orders.Pricing
	// Redis backs idempotency keys; nil disables them.
	Redis redis.Cmdable
	Log   *slog.Logger
}

// Summary quotes the cart as it was last read.
func (s *Service) Summary(sess *session.Session) orders.Quote {
	return s.Pricing.Quote(sess.Cart.Total())
}

// PlaceOrder re-reads the cart, checks stock at this instant, creates the
// order and empties the cart. Stock is not reserved.
func (s *Service) PlaceOrder(ctx context.Context, sess *session.Session, in PlaceOrderInput) (orders.Order, error) {
	if sess == nil || !sess.Identity.IsAuthenticated() {
		return orders.Order{}, apperr.ErrLoginRequired
	}
	userID := sess.Identity.UserID
	log := s.Log.With("user_id", userID)

	in.AddressID = strings.TrimSpace(in.AddressID)
	if in.AddressID == "" {
		return orders.Order{}, apperr.Validation("please select a shipping address")
	}
	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = orders.PaymentMethodCOD
	}
	if method != orders.PaymentMethodCOD {
		return orders.Order{}, apperr.Validation("payment method %q is not available", method)
	}

	if in.IdempotencyKey != "" && s.Redis != nil {
		key := fmt.Sprintf(redisx.KeyIdemCheckout, userID, in.IdempotencyKey)
		won, err := redisx.Claim(ctx, s.Redis, key, redisx.TTLIdempotency)
		if err != nil {
			log.Warn("idempotency claim", "err", err)
		} else if !won {
			return s.replay(ctx, userID, key)
		} else {
			o, err := s.place(ctx, sess, in, method, log)
			if err != nil {
				_ = s.Redis.Del(context.WithoutCancel(ctx), key).Err()
				return orders.Order{}, err
			}
			if err := s.Redis.Set(ctx, key, o.OrderNumber, redisx.TTLIdempotency).Err(); err != nil {
				log.Warn("idempotency record", "order_number", o.OrderNumber, "err", err)
			}
			return o, nil
		}
	}
	return s.place(ctx, sess, in, method, log)
}

func (s *Service) replay(ctx context.Context, userID, key string) (orders.Order, error) {
	number, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && !strings.HasPrefix(number, "ORD-")) {
		return orders.Order{}, fmt.Errorf("%w: checkout already in progress", apperr.ErrConflict)
	}
	if err != nil {
		return orders.Order{}, apperr.Persistence("checkout.idempotency", err)
	}
	o, err := s.Orders.GetOrderByNumberForUser(ctx, userID, number)
	if err != nil {
		return orders.Order{}, err
	}
	if o == nil {
		return orders.Order{}, apperr.NotFound("order", number)
	}
	return o.Order, nil
}

func (s *Service) place(ctx context.Context, sess *session.Session, in PlaceOrderInput, method string, log *slog.Logger) (orders.Order, error) {
	items, err := sess.Cart.Fetch(ctx)
	if err != nil {
		return orders.Order{}, err
	}
	if len(items) == 0 {
		return orders.Order{}, apperr.Validation("cart is empty")
	}

	subtotal := decimal.Zero
	lines := make([]orders.ItemInput, 0, len(items))
	for _, it := range items {
		p := it.Product
		if !p.IsActive || it.Quantity > p.StockQuantity {
			return orders.Order{}, fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, p.Name, max(p.StockQuantity, 0))
		}
		lines = append(lines, orders.ItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     p.Price,
			Snapshot:  orders.SnapshotOf(p),
		})
		subtotal = subtotal.Add(it.LineTotal())
	}
	q := s.Pricing.Quote(subtotal)

	o, err := s.Orders.CreateOrder(ctx, orders.CreateOrderInput{
		UserID:            sess.Identity.UserID,
		Items:             lines,
		ShippingAddressID: in.AddressID,
		PaymentMethod:     method,
		Subtotal:          q.Subtotal,
		Tax:               q.Tax,
		ShippingCost:      q.ShippingCost,
		Total:             q.Total,
		Notes:             in.Notes,
	})
	if err != nil {
		return orders.Order{}, err
	}

	// The order is committed; a cart that fails to clear is left for the
	// customer to empty.
	if err := sess.Cart.Clear(ctx); err != nil {
		log.Error("clear cart after checkout", "order_number", o.OrderNumber, "err", err)
	}
	return o, nil
}

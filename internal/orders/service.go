// Package orders owns order creation, reads and the status lifecycle.
//
// Amounts are decided by the caller (checkout) and checked here; the service
// never re-prices. Events go out only after the transaction commits.
package orders

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store   Store
	Numbers NumberGenerator
	// Cache and Publishers are optional.
	Cache      StatusCache
	Publishers map[string]Publisher // by topic
	Producer   string
	Log        *slog.Logger
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func validateCreate(in CreateOrderInput) error {
	if in.UserID == "" {
		return apperr.ErrLoginRequired
	}
	if in.ShippingAddressID == "" {
		return apperr.Validation("shipping address is required")
	}
	if len(in.Items) == 0 {
		return apperr.Validation("order has no items")
	}
	sum := decimal.Zero
	for i, it := range in.Items {
		if it.ProductID == "" {
			return apperr.Validation("item %d: product_id is required", i)
		}
		if it.Quantity <= 0 {
			return apperr.Validation("item %d: quantity must be positive", i)
		}
		if it.Price.IsNegative() {
			return apperr.Validation("item %d: price must not be negative", i)
		}
		sum = sum.Add(it.Subtotal())
	}
	if in.Tax.IsNegative() || in.ShippingCost.IsNegative() {
		return apperr.Validation("tax and shipping_cost must not be negative")
	}
	if !sum.Equal(in.Subtotal) {
		return apperr.Validation("subtotal %s does not match items %s", in.Subtotal, sum)
	}
	if !in.Subtotal.Add(in.Tax).Add(in.ShippingCost).Equal(in.Total) {
		return apperr.Validation("total %s is not subtotal + tax + shipping_cost", in.Total)
	}
	return nil
}

// CreateOrder stores a pending order with its items. It neither clears the
// cart nor takes payment.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (Order, error) {
	in.ShippingAddressID = strings.TrimSpace(in.ShippingAddressID)
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentMethodCOD
	}
	if err := validateCreate(in); err != nil {
		return Order{}, err
	}
	if in.PaymentMethod != PaymentMethodCOD {
		return Order{}, apperr.Validation("payment method %q is not available", in.PaymentMethod)
	}

	addr, err := s.Store.ShippingAddress(ctx, in.UserID, in.ShippingAddressID)
	if err != nil {
		return Order{}, err
	}
	number, err := s.Numbers.Next(ctx)
	if err != nil {
		s.logger().Error("order number", "user_id", in.UserID, "err", err)
		return Order{}, err
	}

	o := Order{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		OrderNumber:   number,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Subtotal:      in.Subtotal,
		Tax:           in.Tax,
		ShippingCost:  in.ShippingCost,
		Total:         in.Total,
		PaymentMethod: in.PaymentMethod,
		Notes:         strings.TrimSpace(in.Notes),

		ShippingAddressID: &in.ShippingAddressID,
		ShippingAddress:   addr,
	}

	items := make([]OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, OrderItem{
			ID:              uuid.NewString(),
			OrderID:         o.ID,
			ProductID:       it.ProductID,
			ProductSnapshot: it.Snapshot,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.Price,
			Subtotal:        it.Subtotal(),
		})
	}

	o, err = s.Store.Create(ctx, o, items)
	if err != nil {
		s.logger().Error("create order", "user_id", in.UserID, "order_number", number, "err", err)
		return Order{}, err
	}

	s.cache(ctx, o)
	prices := make([]ItemPrice, 0, len(items))
	for _, it := range items {
		prices = append(prices, ItemPrice{ProductID: it.ProductID, Qty: it.Quantity, Price: it.PriceAtPurchase})
	}
	s.publish(ctx, TopicOrderPlaced, EventOrderPlaced, o.ID, OrderPlacedPayload{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Items:         prices,
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		ShipTo:        o.ShippingAddress.OneLine(),
		PlacedAt:      o.CreatedAt,
	})
	s.logger().Info("order placed", "order_id", o.ID, "order_number", o.OrderNumber, "total", o.Total.StringFixed(2))
	return o, nil
}

// GetOrders lists the user's orders newest first.
func (s *Service) GetOrders(ctx context.Context, userID string) ([]OrderWithItems, error) {
	if userID == "" {
		return []OrderWithItems{}, nil
	}
	return s.Store.ListByUser(ctx, userID)
}

// GetOrderByNumber returns (nil, nil) when no order carries number.
func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*OrderWithItems, error) {
	return s.Store.GetByNumber(ctx, strings.TrimSpace(number))
}

// GetOrderByNumberForUser hides other users' orders behind (nil, nil).
func (s *Service) GetOrderByNumberForUser(ctx context.Context, userID, number string) (*OrderWithItems, error) {
	o, err := s.GetOrderByNumber(ctx, number)
	if err != nil || o == nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, nil
	}
	return o, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, to Status) (Order, error) {
	if !to.Valid() {
		return Order{}, apperr.Validation("unknown order status %q", to)
	}
	cur, err := s.current(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if cur.Status == to {
		return cur, nil
	}
	if cur.Status.Terminal() {
		return Order{}, apperr.Validation("order is already %s", cur.Status.Label())
	}
	if !CanTransition(cur.Status, to) {
		return Order{}, apperr.Validation("order cannot move from %s to %s", cur.Status, to)
	}

	o, err := s.Store.UpdateStatus(ctx, orderID, cur.Status, to)
	if err != nil {
		return Order{}, err
	}
	s.cache(ctx, o)
	s.publish(ctx, TopicOrderStatusChanged, EventOrderStatusChanged, o.ID, OrderStatusChangedPayload{
		OrderID: o.ID, OrderNumber: o.OrderNumber, From: cur.Status, To: to, ChangedAt: o.UpdatedAt,
	})
	return o, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID string, to PaymentStatus) (Order, error) {
	if !to.Valid() {
		return Order{}, apperr.Validation("unknown payment status %q", to)
	}
	cur, err := s.current(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if cur.PaymentStatus == to {
		return cur, nil
	}
	if !CanTransitionPayment(cur.PaymentStatus, to) {
		return Order{}, apperr.Validation("payment cannot move from %s to %s", cur.PaymentStatus, to)
	}

	o, err := s.Store.UpdatePaymentStatus(ctx, orderID, cur.PaymentStatus, to)
	if err != nil {
		return Order{}, err
	}
	s.cache(ctx, o)
	s.publish(ctx, TopicOrderPaymentChanged, EventPaymentStatusChanged, o.ID, PaymentStatusChangedPayload{
		OrderID: o.ID, OrderNumber: o.OrderNumber, From: cur.PaymentStatus, To: to, ChangedAt: o.UpdatedAt,
	})
	return o, nil
}

func (s *Service) current(ctx context.Context, orderID string) (Order, error) {
	o, err := s.Store.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o == nil {
		return Order{}, apperr.NotFound("order", orderID)
	}
	return o.Order, nil
}

// GetOrderStatus serves from the cache and falls back to the database. An
// empty userID skips the ownership check.
func (s *Service) GetOrderStatus(ctx context.Context, userID, number string) (StatusView, error) {
	number = strings.TrimSpace(number)
	if s.Cache != nil {
		v, ok, err := s.Cache.Get(ctx, number)
		if err != nil {
			s.logger().Warn("status cache read", "order_number", number, "err", err)
		}
		if ok {
			if userID != "" && v.UserID != userID {
				return StatusView{}, apperr.NotFound("order", number)
			}
			return v, nil
		}
	}

	o, err := s.Store.GetByNumber(ctx, number)
	if err != nil {
		return StatusView{}, err
	}
	if o == nil || (userID != "" && o.UserID != userID) {
		return StatusView{}, apperr.NotFound("order", number)
	}
	s.cache(ctx, o.Order)
	return o.StatusView(), nil
}

func (s *Service) cache(ctx context.Context, o Order) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, o.StatusView()); err != nil {
		s.logger().Warn("status cache write", "order_number", o.OrderNumber, "err", err)
	}
}

func (s *Service) publish(ctx context.Context, topic, eventType, orderID string, payload any) {
	p, ok := s.Publishers[topic]
	if !ok {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now(),
		Producer:      s.Producer,
		TraceID:       traceID(ctx),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
}

type traceKey struct{}

// WithTraceID tags ctx so published events carry the request id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func traceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

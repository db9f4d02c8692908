// Package projection keeps the order status cache in line with order
// events published by the API.
package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type OrderReader interface {
	GetOrderByNumber(ctx context.Context, number string) (*orders.OrderWithItems, error)
}

type Projector struct {
	Orders OrderReader
	Cache  orders.StatusCache
	Redis  redis.Cmdable // dedup keys
	Name   string
	Log    *slog.Logger
}

// orderRef is the part every order event payload shares.
type orderRef struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// Handle is the consumer handler. The cache is rebuilt from the database
// row rather than the payload, so events applied out of order still leave
// the latest status behind.
func (p *Projector) Handle(ctx context.Context, m kafkago.Message) error {
	if t := kafkax.Header(m, "x-event-type"); t != "" && !projected(t) {
		return nil
	}
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		p.Log.Warn("skipping undecodable message", "topic", m.Topic, "offset", m.Offset, "err", err)
		return nil
	}
	if !projected(env.EventType) {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, p.Name, env.EventID)
	won, err := redisx.Claim(ctx, p.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !won {
		p.Log.Debug("duplicate event", "event_id", env.EventID)
		return nil
	}

	if err := p.apply(ctx, env); err != nil {
		// release the claim so the retry is not taken for a duplicate
		_ = p.Redis.Del(context.WithoutCancel(ctx), dkey).Err()
		return err
	}
	return nil
}

func projected(eventType string) bool {
	switch eventType {
	case orders.EventOrderPlaced, orders.EventOrderStatusChanged, orders.EventPaymentStatusChanged:
		return true
	}
	return false
}

func (p *Projector) apply(ctx context.Context, env orders.Envelope) error {
	ref, err := kafkax.UnwrapPayload[orderRef](env.Payload)
	if err != nil {
		p.Log.Warn("skipping event without order reference", "event_id", env.EventID, "err", err)
		return nil
	}
	if ref.OrderNumber == "" {
		return nil
	}

	o, err := p.Orders.GetOrderByNumber(ctx, ref.OrderNumber)
	if err != nil {
		return err
	}
	if o == nil {
		p.Log.Warn("event for unknown order", "order_number", ref.OrderNumber, "event_id", env.EventID)
		return nil
	}
	if err := p.Cache.Set(ctx, o.StatusView()); err != nil {
		return err
	}
	p.Log.Info("status projected", "order_number", o.OrderNumber, "status", o.Status,
		"payment_status", o.PaymentStatus, "event", env.EventType)
	return nil
}

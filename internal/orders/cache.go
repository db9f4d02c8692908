package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

type StatusCache interface {
	Get(ctx context.Context, orderNumber string) (StatusView, bool, error)
	Set(ctx context.Context, v StatusView) error
}

// RedisStatusCache stores StatusView JSON under order_status:{order_number}.
type RedisStatusCache struct{ Redis redis.Cmdable }

func (c *RedisStatusCache) Get(ctx context.Context, orderNumber string) (StatusView, bool, error) {
	s, err := c.Redis.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderNumber)).Result()
	if errors.Is(err, redis.Nil) {
		return StatusView{}, false, nil
	}
	if err != nil {
		return StatusView{}, false, err
	}
	var v StatusView
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return StatusView{}, false, nil
	}
	return v, true, nil
}

func (c *RedisStatusCache) Set(ctx context.Context, v StatusView) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, v.OrderNumber), b, redisx.TTLStatusCache).Err()
}

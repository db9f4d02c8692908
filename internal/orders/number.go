package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// NumberGenerator hands out unique, human-readable order numbers.
type NumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// PostgresNumbers calls the generate_order_number() function.
type PostgresNumbers struct{ DB postgres.DB }

func (g *PostgresNumbers) Next(ctx context.Context) (string, error) {
	var n string
	if err := g.DB.QueryRow(ctx, `SELECT generate_order_number()`).Scan(&n); err != nil {
		return "", apperr.Persistence("orders.generate_number", err)
	}
	return n, nil
}

// RedisNumbers keeps one counter per UTC day.
type RedisNumbers struct {
	Redis redis.Cmdable
	Now   func() time.Time
}

func (g *RedisNumbers) Next(ctx context.Context) (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	day := now().UTC()
	key := fmt.Sprintf(redisx.KeyOrderSeq, day.Format("20060102"))

	seq, err := g.Redis.Incr(ctx, key).Result()
	if err != nil {
		return "", apperr.Persistence("orders.generate_number", err)
	}
	if seq == 1 {
		_ = g.Redis.Expire(ctx, key, redisx.TTLOrderSeq).Err()
	}
	return formatOrderNumber(day, seq), nil
}

func formatOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%06d", day.Format("20060102"), seq)
}

package orders

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStatusCacheRoundTrip(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := &RedisStatusCache{Redis: rdb}
	v := StatusView{
		OrderNumber:   "ORD-20240307-000001",
		UserID:        "u1",
		Status:        StatusShipped,
		StatusLabel:   "Shipped",
		PaymentStatus: PaymentPending,
		UpdatedAt:     time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)

	mock.ExpectSet("order_status:ORD-20240307-000001", b, redisx.TTLStatusCache).SetVal("OK")
	mock.ExpectGet("order_status:ORD-20240307-000001").SetVal(string(b))

	require.NoError(t, c.Set(context.Background(), v))
	got, ok, err := c.Get(context.Background(), v.OrderNumber)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, v, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStatusCacheMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("order_status:ORD-X").RedisNil()

	_, ok, err := (&RedisStatusCache{Redis: rdb}).Get(context.Background(), "ORD-X")
	require.NoError(t, err)
	assert.False(t, ok)
}

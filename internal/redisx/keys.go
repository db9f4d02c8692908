package redisx

import "time"

const (
	// Checkout idempotency: idem:checkout:{user_id}:{idempotency_key} -> order_number
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Cached status: order_status:{order_number} -> {"status": "...", "payment_status": "...", "updated_at": "..."}
	KeyOrderStatus = "order_status:%s"

	// Event dedup: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Daily order counter: order_seq:{yyyymmdd}
	KeyOrderSeq = "order_seq:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
	TTLOrderSeq    = 48 * time.Hour
)

package redisx

import "time"

const (
	// Idempotency create product: idem:product:create:{idempotency_key} -> product_id
	KeyIdemProductCreate = "idem:product:create:%s"
)

var TTLIdempotency = 24 * time.Hour

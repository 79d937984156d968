package redisx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// IdempotencyStore remembers which product a create request produced.
type IdempotencyStore struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewIdempotencyStore(rdb *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{RDB: rdb, TTL: TTLIdempotency}
}

// Lookup returns the product id stored for key, ok=false when none.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (int64, bool, error) {
	v, err := s.RDB.Get(ctx, fmt.Sprintf(KeyIdemProductCreate, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency key %q: %w", key, err)
	}
	return id, true, nil
}

// Remember stores id under key unless the key is already taken.
func (s *IdempotencyStore) Remember(ctx context.Context, key string, productID int64) error {
	return s.RDB.SetNX(ctx, fmt.Sprintf(KeyIdemProductCreate, key), productID, s.TTL).Err()
}

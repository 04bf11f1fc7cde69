package market

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyGuard absorbs double-submitted checkout requests, two browser
// tabs posting the same cart within the guard window. It is an optimization
// in front of the transaction, not a correctness requirement; the row locks
// in Checkout remain the source of truth.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, cartID int64) (bool, error)
	Release(ctx context.Context, cartID int64)
}

// RedisGuard implements IdempotencyGuard with a SET NX key per cart.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisGuard{client: client, ttl: ttl}
}

func guardKey(cartID int64) string {
	return fmt.Sprintf("gomarket:checkout:%d", cartID)
}

func (g *RedisGuard) Acquire(ctx context.Context, cartID int64) (bool, error) {
	return g.client.SetNX(ctx, guardKey(cartID), 1, g.ttl).Result()
}

// Release frees the key early so a failed checkout can be retried at once.
func (g *RedisGuard) Release(ctx context.Context, cartID int64) {
	g.client.Del(ctx, guardKey(cartID))
}

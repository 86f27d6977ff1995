package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	redisclient "github.com/petalpost/florist-backend/pkg/redis"
)

const idempotencyScope = "stripe_event"

// IdempotencyGuard remembers processed gateway event IDs so redelivered
// webhooks become no-ops.
type IdempotencyGuard struct {
	store redisclient.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyGuard builds a guard over the shared Redis client.
func NewIdempotencyGuard(store redisclient.IdempotencyStore, ttl time.Duration) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, fmt.Errorf("idempotency store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("idempotency ttl must be positive")
	}
	return &IdempotencyGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark claims the event ID. Reports true when another delivery
// already processed it.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	key := g.store.IdempotencyKey(idempotencyScope, eventID)
	claimed, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// Delete frees the claim so a failed event can be retried on redelivery.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	key := g.store.IdempotencyKey(idempotencyScope, eventID)
	err := g.store.Del(ctx, key)
	if err != nil && !errors.Is(err, redislib.Nil) {
		return err
	}
	return nil
}

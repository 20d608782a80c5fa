package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/loanledger/pkg/redis"
)

// Store is the slice of the Redis client the guard needs.
type Store interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
}

// Guard claims outbox event ids per consumer so each event is handed to the
// broker at most once while the claim lives. Keys look like
// ll:idempotency:delivered:<consumer>:<event_id> and hold the claiming
// instance id.
type Guard struct {
	store    Store
	ttl      time.Duration
	instance string
}

func NewGuard(store Store, ttl time.Duration, instance string) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	if instance == "" {
		instance = "unknown"
	}
	return &Guard{store: store, ttl: ttl, instance: instance}, nil
}

// Claim returns true when the caller now owns delivery of eventID and false
// when another attempt already claimed it.
func (g *Guard) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := g.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	return g.store.SetNX(ctx, key, g.instance, g.ttl)
}

// Release drops a claim after a failed publish so the retry can take it.
func (g *Guard) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := g.key(consumer, eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

// Owner reports which instance holds the claim, or "" when nobody does.
func (g *Guard) Owner(ctx context.Context, consumer string, eventID uuid.UUID) (string, error) {
	key, err := g.key(consumer, eventID)
	if err != nil {
		return "", err
	}
	owner, err := g.store.Get(ctx, key)
	if redis.IsNil(err) {
		return "", nil
	}
	return owner, err
}

func (g *Guard) key(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey("delivered:"+consumer, eventID.String()), nil
}

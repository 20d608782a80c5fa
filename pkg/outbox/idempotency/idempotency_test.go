package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore behaves like Redis for the handful of commands the guard uses.
type memoryStore struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if m.failErr != nil {
		return "", m.failErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if m.failErr != nil {
		return false, m.failErr
	}
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	if m.failErr != nil {
		return m.failErr
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "ll:idempotency:" + scope + ":" + id
}

func TestNewGuardValidates(t *testing.T) {
	_, err := NewGuard(nil, time.Hour, "a")
	assert.Error(t, err)

	_, err = NewGuard(newMemoryStore(), 0, "a")
	assert.Error(t, err)

	guard, err := NewGuard(newMemoryStore(), time.Hour, "")
	require.NoError(t, err)
	assert.Equal(t, "unknown", guard.instance)
}

func TestClaimIsExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	guard, err := NewGuard(store, 24*time.Hour, "publisher-1")
	require.NoError(t, err)
	eventID := uuid.New()
	key := "ll:idempotency:delivered:outbox-publisher:" + eventID.String()

	claimed, err := guard.Claim(ctx, "outbox-publisher", eventID)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, 24*time.Hour, store.ttls[key])

	claimed, err = guard.Claim(ctx, "outbox-publisher", eventID)
	require.NoError(t, err)
	assert.False(t, claimed)

	owner, err := guard.Owner(ctx, "outbox-publisher", eventID)
	require.NoError(t, err)
	assert.Equal(t, "publisher-1", owner)

	require.NoError(t, guard.Release(ctx, "outbox-publisher", eventID))
	owner, err = guard.Owner(ctx, "outbox-publisher", eventID)
	require.NoError(t, err)
	assert.Empty(t, owner)

	claimed, err = guard.Claim(ctx, "outbox-publisher", eventID)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestClaimsAreScopedPerConsumer(t *testing.T) {
	ctx := context.Background()
	guard, err := NewGuard(newMemoryStore(), time.Hour, "p")
	require.NoError(t, err)
	eventID := uuid.New()

	first, err := guard.Claim(ctx, "outbox-publisher", eventID)
	require.NoError(t, err)
	second, err := guard.Claim(ctx, "audit-mirror", eventID)
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, second)
}

func TestGuardRequiresIdentity(t *testing.T) {
	guard, err := NewGuard(newMemoryStore(), time.Hour, "p")
	require.NoError(t, err)

	_, err = guard.Claim(context.Background(), "", uuid.New())
	assert.Error(t, err)
	_, err = guard.Claim(context.Background(), "outbox-publisher", uuid.Nil)
	assert.Error(t, err)
	assert.Error(t, guard.Release(context.Background(), "", uuid.New()))
}

func TestGuardSurfacesStoreFailures(t *testing.T) {
	store := newMemoryStore()
	store.failErr = errors.New("connection refused")
	guard, err := NewGuard(store, time.Hour, "p")
	require.NoError(t, err)

	_, err = guard.Claim(context.Background(), "outbox-publisher", uuid.New())
	assert.ErrorIs(t, err, store.failErr)
	_, err = guard.Owner(context.Background(), "outbox-publisher", uuid.New())
	assert.ErrorIs(t, err, store.failErr)
}

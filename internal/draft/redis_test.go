package draft

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	s := NewRedisStore(client, time.Minute)
	s.prefix = "test:draft:" + uuid.NewString() + ":"
	return s
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	d := sampleDraft()

	require.NoError(t, s.Put(ctx, "sid", d))

	peeked, err := s.Peek(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, d.ID, peeked.ID)

	taken, err := s.Take(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, d.TotalAmount.Equal(taken.TotalAmount))

	_, err = s.Peek(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Take(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Discard(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sid", sampleDraft()))
	require.NoError(t, s.Discard(ctx, "sid"))
	_, err := s.Peek(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)
}

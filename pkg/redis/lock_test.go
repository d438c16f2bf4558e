package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/redis"
)

func TestConnect_EmptyURL(t *testing.T) {
	t.Parallel()
	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
}

func TestLocker(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL is not set")
	}

	ctx := context.Background()
	client, err := redis.Connect(ctx, redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  1,
		RetryInterval:  time.Millisecond,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	locker := redis.NewLocker(client, "test:lock:", time.Second)
	key := uuid.NewString()

	release, err := locker.TryLock(ctx, key)
	require.NoError(t, err)

	_, err = locker.TryLock(ctx, key)
	require.ErrorIs(t, err, redis.ErrLockNotAcquired)

	require.NoError(t, release(ctx))
	require.ErrorIs(t, release(ctx), redis.ErrLockNotOwned)

	again, err := locker.TryLock(ctx, key)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

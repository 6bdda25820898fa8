package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *RedisLedger) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := ConnectRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisLedger(client, "test:alert:")
}

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	ok, err := l.Claim(ctx, "p1:2024-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Claim(ctx, "p1:2024-01-01", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "p1:2024-01-01"))
	ok, err = l.Claim(ctx, "p1:2024-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLedger(t *testing.T) {
	ctx := context.Background()
	mr, l := setupMiniredis(t)

	ok, err := l.Claim(ctx, "p1:2024-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("test:alert:p1:2024-01-01"))

	ok, err = l.Claim(ctx, "p1:2024-01-01", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Claim(ctx, "p2:2024-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Release(ctx, "p1:2024-01-01"))
	assert.False(t, mr.Exists("test:alert:p1:2024-01-01"))
}

func TestRedisLedger_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, l := setupMiniredis(t)

	ok, err := l.Claim(ctx, "p1:2024-01-01", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = l.Claim(ctx, "p1:2024-01-01", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLedger_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := ConnectRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	l := NewRedisLedger(client, "test:alert:")
	mr.Close()

	_, err = l.Claim(context.Background(), "p1:2024-01-01", time.Minute)
	assert.Error(t, err)
}

func TestConnectRedis_InvalidURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

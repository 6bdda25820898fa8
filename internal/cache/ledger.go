package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryLedger claims keys in a process-local TTL cache
type MemoryLedger struct {
	claims *Cache[bool]
}

// NewMemoryLedger creates a ledger backed by an in-memory cache
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{claims: New[bool]()}
}

// Claim reports true if key was not already claimed within its TTL
func (l *MemoryLedger) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return l.claims.SetIfAbsent(key, true, ttl), nil
}

// Release drops a claim so the key can be claimed again
func (l *MemoryLedger) Release(_ context.Context, key string) error {
	l.claims.Delete(key)
	return nil
}

// RedisLedger claims keys with SET NX so every replica shares the same claims
type RedisLedger struct {
	client *redis.Client
	prefix string
}

// NewRedisLedger creates a ledger over an existing client. Keys are stored
// under prefix.
func NewRedisLedger(client *redis.Client, prefix string) *RedisLedger {
	return &RedisLedger{client: client, prefix: prefix}
}

// Claim reports true if key was not already claimed within its TTL
func (l *RedisLedger) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so the key can be claimed again
func (l *RedisLedger) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}

// ConnectRedis parses a redis:// URL and verifies the server answers
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

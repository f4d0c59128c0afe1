// Package idempotency lets message consumers process each delivery once even
// when the broker redelivers it.
package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 24 * time.Hour

type Guard interface {
	// Claim reports whether the caller is the first to see key.
	Claim(ctx context.Context, key string) (bool, error)
	// Release gives the key back so a later delivery can retry.
	Release(ctx context.Context, key string) error
}

type RedisGuard struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, prefix: "idem:", ttl: ttl}
}

// NewRedisClient parses url and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func (g *RedisGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, g.prefix+key, time.Now().Unix(), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, g.prefix+key).Err()
}

// MemoryGuard is a process-local Guard for single-instance deployments.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (g *MemoryGuard) Claim(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if expires, ok := g.seen[key]; ok && now.Before(expires) {
		return false, nil
	}
	g.seen[key] = now.Add(g.ttl)
	return true, nil
}

func (g *MemoryGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, key)
	return nil
}

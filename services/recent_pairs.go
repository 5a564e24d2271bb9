package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecentPairsCache remembers committed pairs for the re-pair avoidance
// window. The window is advisory: cache failures degrade to "not recent"
// and must never block a cycle.
type RecentPairsCache interface {
	RecentPairFilter
	MarkPaired(ctx context.Context, a, b string) error
}

// NoopRecentPairs disables recency filtering (no Redis configured).
type NoopRecentPairs struct{}

func (NoopRecentPairs) RecentlyPaired(ctx context.Context, a, b string) bool { return false }
func (NoopRecentPairs) MarkPaired(ctx context.Context, a, b string) error    { return nil }

// RedisRecentPairs backs the avoidance window with Redis key TTLs.
type RedisRecentPairs struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRecentPairs(addr string, ttl time.Duration) *RedisRecentPairs {
	return &RedisRecentPairs{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		TTL:    ttl,
	}
}

func (r *RedisRecentPairs) key(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "recentpair:" + a + "_" + b
}

func (r *RedisRecentPairs) RecentlyPaired(ctx context.Context, a, b string) bool {
	n, err := r.Client.Exists(ctx, r.key(a, b)).Result()
	if err != nil {
		log.Printf("⚠️ Recent-pair lookup failed for %s/%s: %v", a, b, err)
		return false
	}
	return n > 0
}

func (r *RedisRecentPairs) MarkPaired(ctx context.Context, a, b string) error {
	return r.Client.Set(ctx, r.key(a, b), "1", r.TTL).Err()
}

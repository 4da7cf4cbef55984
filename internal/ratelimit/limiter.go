// Package ratelimit enforces a per-session sliding-window request quota.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimitResult is the outcome of a rate limit check.
type LimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter performs sliding-window rate limiting. The check is consulted
// before any planning work and records the attempt when it allows.
type Limiter interface {
	Check(ctx context.Context, key string, limit int64, window time.Duration) (LimitResult, error)
}

// NewLimiter returns a redis-backed limiter when a client is given and the
// in-memory limiter otherwise. Both enforce; there is no fail-open variant
// for a missing backend.
func NewLimiter(rdb *redis.Client) Limiter {
	if rdb != nil {
		return &RedisLimiter{rdb: rdb}
	}
	return NewMemoryLimiter()
}

// RedisLimiter backs the window with a redis sorted set so the quota holds
// across planner instances.
type RedisLimiter struct {
	rdb *redis.Client
}

// slidingWindowScript atomically: removes expired entries, counts, adds if
// under the limit.
// KEYS[1] = sorted set key
// ARGV[1] = window start (unix micro)
// ARGV[2] = now (unix micro), also the member score
// ARGV[3] = limit
// ARGV[4] = TTL seconds for the key
// Returns: [current_count, 1=allowed/0=denied]
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, ttl)
    return {count + 1, 1}
end

redis.call('EXPIRE', key, ttl)
return {count, 0}
`)

func (l *RedisLimiter) Check(ctx context.Context, key string, limit int64, window time.Duration) (LimitResult, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixMicro()
	nowMicro := now.UnixMicro()
	ttlSecs := int64(window.Seconds()) + 1

	redisKey := fmt.Sprintf("atlas:rl:%s", key)

	result, err := slidingWindowScript.Run(ctx, l.rdb, []string{redisKey},
		windowStart, nowMicro, limit, ttlSecs,
	).Int64Slice()
	if err != nil || len(result) < 2 {
		// Fail open on redis errors only. A broken backend should not take
		// the planner down with it.
		return LimitResult{Allowed: true, Remaining: limit, ResetAt: now.Add(window)}, nil
	}

	count := result[0]
	allowed := result[1] == 1
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	res := LimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   now.Add(window),
	}
	if !allowed {
		res.RetryAfter = window / 2
	}
	return res, nil
}

// MemoryLimiter keeps per-key timestamp windows behind one mutex. Suitable
// for a single planner instance; the quota still holds exactly.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string][]time.Time)}
}

func (l *MemoryLimiter) Check(ctx context.Context, key string, limit int64, window time.Duration) (LimitResult, error) {
	now := time.Now()
	cutoff := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.windows[key][:0]
	for _, ts := range l.windows[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if int64(len(kept)) >= limit {
		l.windows[key] = kept
		res := LimitResult{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    kept[0].Add(window),
			RetryAfter: time.Until(kept[0].Add(window)),
		}
		if res.RetryAfter < 0 {
			res.RetryAfter = 0
		}
		return res, nil
	}

	kept = append(kept, now)
	l.windows[key] = kept
	return LimitResult{
		Allowed:   true,
		Remaining: limit - int64(len(kept)),
		ResetAt:   now.Add(window),
	}, nil
}

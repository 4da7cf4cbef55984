package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "atlas:sess:"

// RedisStore persists session records as JSON documents in Redis, one key
// per session. A TTL of zero disables expiry.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (s *RedisStore) Create(ctx context.Context, sessionID string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sessionID, err)
	}
	return s.rdb.Set(ctx, s.key(sessionID), data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &rec, nil
}

func (s *RedisStore) Update(ctx context.Context, sessionID string, rec Record) error {
	// Same write path as Create; the SET is atomic per key.
	return s.Create(ctx, sessionID, rec)
}

func (s *RedisStore) Remove(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, s.key(sessionID)).Err()
}

func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return keys, nil
}

// NewStore selects the Redis-backed store when a reachable client is given,
// falling back silently to the in-memory store otherwise.
func NewStore(rdb *redis.Client, ttl time.Duration) Store {
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err == nil {
			return NewRedisStore(rdb, ttl)
		}
	}
	return NewMemoryStore()
}

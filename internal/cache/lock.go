package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func lockKey(conversationID string) string {
	return "conversation:lock:" + conversationID
}

func (l *RedisLocker) TryLock(ctx context.Context, conversationID string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, lockKey(conversationID), 1, ttl).Result()
}

func (l *RedisLocker) Unlock(ctx context.Context, conversationID string) error {
	return l.rdb.Del(ctx, lockKey(conversationID)).Err()
}

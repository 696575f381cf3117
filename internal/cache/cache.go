package cache

import (
	"context"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ConversationLocker is the advisory single-flight guard keyed by
// conversation id. At most one turn may run per conversation at a time; the
// TTL bounds how long a crashed holder can block the conversation.
type ConversationLocker interface {
	TryLock(ctx context.Context, conversationID string, ttl time.Duration) (acquired bool, err error)
	Unlock(ctx context.Context, conversationID string) error
}

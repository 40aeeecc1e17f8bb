package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SessionStore keeps the per-conversation supervisor flag in Redis so it is
// shared across bot replicas. Entries expire after ttl of inactivity.
type SessionStore struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewSessionStore(rdb goredis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{rdb: rdb, prefix: keyPrefix(prefix) + "mode:", ttl: ttl}
}

func (s *SessionStore) key(conversationID string) string {
	return s.prefix + strings.TrimSpace(conversationID)
}

func (s *SessionStore) IsSupervisor(ctx context.Context, conversationID string) (bool, error) {
	if s == nil || s.rdb == nil {
		return false, fmt.Errorf("redis session store not initialized")
	}
	v, err := s.rdb.Get(ctx, s.key(conversationID)).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if v == "1" {
		_ = s.rdb.Expire(ctx, s.key(conversationID), s.ttl).Err()
		return true, nil
	}
	return false, nil
}

func (s *SessionStore) SetSupervisor(ctx context.Context, conversationID string, on bool) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis session store not initialized")
	}
	if on {
		return s.rdb.Set(ctx, s.key(conversationID), "1", s.ttl).Err()
	}
	return s.rdb.Del(ctx, s.key(conversationID)).Err()
}

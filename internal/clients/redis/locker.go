package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a keyed try-lock backed by SET NX PX. The ttl bounds how long a
// crashed holder can keep a key.
type Locker struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

func NewLocker(rdb goredis.UniversalClient, log *logger.Logger, prefix string, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Locker{
		rdb:    rdb,
		prefix: keyPrefix(prefix) + "lock:",
		ttl:    ttl,
		log:    log.With("service", "RedisLocker"),
	}
}

// TryLock returns ok=false without waiting when key is already held.
func (l *Locker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	if l == nil || l.rdb == nil {
		return nil, false, fmt.Errorf("redis locker not initialized")
	}
	token := uuid.NewString()
	fullKey := l.prefix + key
	ok, err := l.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.rdb, []string{fullKey}, token).Err(); err != nil {
			l.log.Warn("redis lock release failed", "key", key, "error", err)
		}
	}
	return release, true, nil
}

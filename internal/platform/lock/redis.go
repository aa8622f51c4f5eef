package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

const keyPrefix = "brandlens:lock:"

// compare-and-delete so an expired-then-reacquired lock is never released by its previous owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	rdb redis.UniversalClient
	log *logger.Logger
}

func NewRedisLocker(rdb redis.UniversalClient, baseLog *logger.Logger) *RedisLocker {
	return &RedisLocker{rdb: rdb, log: baseLog.With("component", "RedisLocker")}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrHeld
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, l.rdb, []string{keyPrefix + key}, token).Err(); err != nil && err != redis.Nil {
				l.log.Warn("lock release failed", "key", key, "error", err)
			}
		})
	}, nil
}

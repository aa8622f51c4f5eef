package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is the single-process fallback used when REDIS_ADDR is unset.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memEntry
	seq   uint64
	nowFn func() time.Time
}

type memEntry struct {
	owner   uint64
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: map[string]memEntry{}, nowFn: time.Now}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowFn()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return nil, ErrHeld
	}
	l.seq++
	owner := l.seq
	l.held[key] = memEntry{owner: owner, expires: now.Add(ttl)}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if cur, ok := l.held[key]; ok && cur.owner == owner {
				delete(l.held, key)
			}
		})
	}, nil
}

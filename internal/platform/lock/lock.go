// Package lock provides short-lived advisory locks keyed by string, used to keep
// at most one audit cycle per prompt in flight.
package lock

import (
	"context"
	"errors"
	"time"
)

var ErrHeld = errors.New("lock already held")

// Locker acquires a named lock for ttl. The returned release func is safe to
// call more than once and never releases a lock taken over by someone else.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedBackend wraps a Backend with a token bucket of requestsPerMinute
// (burst 1). Waiting honours ctx, so a call timeout also bounds the wait.
type RateLimitedBackend struct {
	Backend
	limiter *rate.Limiter
}

func NewRateLimitedBackend(b Backend, requestsPerMinute int) Backend {
	if requestsPerMinute <= 0 {
		return b
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &RateLimitedBackend{Backend: b, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

func (r *RateLimitedBackend) Complete(ctx context.Context, req Request) (Completion, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Completion{Model: r.Backend.Model()}, fmt.Errorf("%s: rate limit wait: %w", r.Backend.Name(), err)
	}
	return r.Backend.Complete(ctx, req)
}

// Close releases the wrapped backend's client, if it holds one.
func (r *RateLimitedBackend) Close() error {
	if c, ok := r.Backend.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

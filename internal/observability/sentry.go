package observability

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
}

var sentryOn atomic.Bool

// InitSentry is a no-op without a DSN. The returned flush func is always safe to call.
func InitSentry(log *logger.Logger, cfg SentryConfig) func() {
	if strings.TrimSpace(cfg.DSN) == "" {
		if log != nil {
			log.Info("sentry disabled (no DSN configured)")
		}
		return func() {}
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
	})
	if err != nil {
		if log != nil {
			log.Warn("failed to initialize sentry (continuing)", "error", err)
		}
		return func() {}
	}
	sentryOn.Store(true)
	if log != nil {
		log.Info("sentry initialized", "environment", cfg.Environment)
	}
	return func() { sentry.Flush(2 * time.Second) }
}

// CaptureRecovered reports a recovered panic value with tags.
func CaptureRecovered(rec any, tags map[string]string) {
	if !sentryOn.Load() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CurrentHub().Recover(rec)
	})
}

func CaptureError(err error, tags map[string]string) {
	if err == nil || !sentryOn.Load() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// PanicError turns a recovered value into an error for logs and persisted rows.
func PanicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}

package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type Config struct {
	// Addr is a single address or a comma-separated cluster/sentinel list.
	Addr     string
	Password string
	DB       int
}

// NewClient connects and pings within 5s so a bad REDIS_ADDR fails startup
// instead of the first audit run.
func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (goredis.UniversalClient, error) {
	var addrs []string
	for _, a := range strings.Split(cfg.Addr, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:       addrs,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("redis connected", "addrs", addrs)
	return rdb, nil
}

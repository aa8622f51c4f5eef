package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/brandlens-backend/internal/clients/llm"
	"github.com/yungbote/brandlens-backend/internal/clients/redis"
	"github.com/yungbote/brandlens-backend/internal/platform/lock"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type Clients struct {
	Redis  goredis.UniversalClient
	Locker lock.Locker
	LLM    *llm.Set
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return Clients{}, err
		}
		out.Redis = rdb
		out.Locker = lock.NewRedisLocker(rdb, log)
		log.Info("run lock backed by redis")
	} else {
		out.Locker = lock.NewMemoryLocker()
		log.Info("run lock is in-process (REDIS_ADDR not set)")
	}

	set, err := wireLLM(ctx, log, cfg.LLM)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.LLM = set
	return out, nil
}

// wireLLM builds the backend set. No configured backend is not fatal: runs
// record ErrNoBackends so the API stays usable for setup.
func wireLLM(ctx context.Context, log *logger.Logger, cfg LLMConfig) (*llm.Set, error) {
	providers := cfg.Providers
	extraction := cfg.Extraction
	if cfg.BackendsFile != "" {
		fc, err := llm.LoadFileConfig(cfg.BackendsFile)
		if err != nil {
			return nil, err
		}
		providers = fc.Providers
		if extraction == "" {
			extraction = fc.Extraction
		}
	}
	set, err := llm.BuildSet(ctx, providers, extraction, cfg.RequestsPerMinute, log)
	if errors.Is(err, llm.ErrNoBackends) {
		return &llm.Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("build llm backends: %w", err)
	}
	log.Info("llm backends ready", "chat", set.Names(), "extraction", extraction)
	return set, nil
}

func (c Clients) Close() {
	if c.LLM != nil {
		for _, b := range c.LLM.Chat {
			if closer, ok := b.(interface{ Close() error }); ok {
				_ = closer.Close()
			}
		}
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

package app

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // SCHEDULE_TIMEZONE must resolve in minimal images

	"github.com/yungbote/brandlens-backend/internal/clients/llm"
	"github.com/yungbote/brandlens-backend/internal/data/db"
	"github.com/yungbote/brandlens-backend/internal/jobs/scheduler"
	"github.com/yungbote/brandlens-backend/internal/modules/audit"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/envutil"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

const serviceName = "brandlens-backend"

type LLMConfig struct {
	// BackendsFile, when set, replaces the per-provider env vars.
	BackendsFile      string
	Providers         []llm.ProviderConfig
	Extraction        string
	RequestsPerMinute int
	CallTimeout       time.Duration
}

type ScheduleConfig struct {
	Spec            string
	Location        *time.Location
	BulkConcurrency int
	LockTTL         time.Duration
}

type Config struct {
	Environment string
	Version     string
	Port        string

	DB db.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LLM      LLMConfig
	Schedule ScheduleConfig

	CORSOrigins []string
	Sentry      observability.SentryConfig
	Otel        observability.OtelConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	env := envutil.String("APP_ENV", "development")
	version := envutil.String("APP_VERSION", "dev")

	tzName := envutil.String("SCHEDULE_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", tzName, err)
	}

	cfg := Config{
		Environment: env,
		Version:     version,
		Port:        envutil.String("PORT", "8080"),
		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", db.DriverPostgres),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "brandlens"),
			SSLMode:    envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath: envutil.String("SQLITE_PATH", "brandlens.db"),
			MaxOpen:    envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdle:    envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
		},
		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		LLM: LLMConfig{
			BackendsFile:      envutil.String("LLM_BACKENDS_FILE", ""),
			Providers:         providersFromEnv(),
			Extraction:        envutil.String("EXTRACTION_BACKEND", ""),
			RequestsPerMinute: envutil.Int("LLM_REQUESTS_PER_MINUTE", 60),
			CallTimeout:       envutil.Duration("LLM_CALL_TIMEOUT", audit.DefaultCallTimeout),
		},
		Schedule: ScheduleConfig{
			Spec:            envutil.String("SCHEDULE_CRON", scheduler.DefaultSpec),
			Location:        loc,
			BulkConcurrency: envutil.Int("SCHEDULE_BULK_CONCURRENCY", scheduler.DefaultBulkConcurrency),
			LockTTL:         envutil.Duration("LOCK_TTL", audit.DefaultLockTTL),
		},
		CORSOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		Sentry: observability.SentryConfig{
			DSN:         envutil.String("SENTRY_DSN", ""),
			Environment: env,
			Release:     version,
		},
		Otel: observability.OtelConfigFromEnv(serviceName, env, version),
	}

	if cfg.LLM.BackendsFile == "" && len(cfg.LLM.Providers) == 0 {
		log.Warn("no llm backends configured; audit runs will fail until an API key is set")
	}
	log.Info("config loaded",
		"db_driver", cfg.DB.Driver,
		"redis", cfg.RedisAddr != "",
		"llm_providers", len(cfg.LLM.Providers),
		"llm_backends_file", cfg.LLM.BackendsFile,
		"schedule", cfg.Schedule.Spec,
		"timezone", tzName,
	)
	return cfg, nil
}

// providersFromEnv builds one backend per provider whose API key is set.
func providersFromEnv() []llm.ProviderConfig {
	var out []llm.ProviderConfig
	if key := envutil.String("OPENAI_API_KEY", ""); key != "" {
		out = append(out, llm.ProviderConfig{
			Name:    string(llm.ProviderOpenAI),
			Type:    llm.ProviderOpenAI,
			APIKey:  key,
			Model:   envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: envutil.String("OPENAI_BASE_URL", ""),
		})
	}
	if key := envutil.String("PERPLEXITY_API_KEY", ""); key != "" {
		out = append(out, llm.ProviderConfig{
			Name:   string(llm.ProviderPerplexity),
			Type:   llm.ProviderPerplexity,
			APIKey: key,
			Model:  envutil.String("PERPLEXITY_MODEL", "sonar"),
		})
	}
	if key := envutil.String("GEMINI_API_KEY", ""); key != "" {
		out = append(out, llm.ProviderConfig{
			Name:   string(llm.ProviderGemini),
			Type:   llm.ProviderGemini,
			APIKey: key,
			Model:  envutil.String("GEMINI_MODEL", "gemini-1.5-flash"),
		})
	}
	return out
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

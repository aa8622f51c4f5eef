package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/brandlens-backend/internal/clients/llm"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

func clearLLMEnv(t *testing.T) {
	for _, k := range []string{"OPENAI_API_KEY", "PERPLEXITY_API_KEY", "GEMINI_API_KEY", "LLM_BACKENDS_FILE", "EXTRACTION_BACKEND"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("SCHEDULE_TIMEZONE", "")
	t.Setenv("SCHEDULE_CRON", "")
	t.Setenv("LOCK_TTL", "")

	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "0 6 * * *", cfg.Schedule.Spec)
	assert.Equal(t, time.UTC, cfg.Schedule.Location)
	assert.Equal(t, 10*time.Minute, cfg.Schedule.LockTTL)
	assert.Empty(t, cfg.LLM.Providers)
}

func TestLoadConfig_ProvidersFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("PERPLEXITY_API_KEY", "pplx-test")
	t.Setenv("SCHEDULE_TIMEZONE", "Europe/Berlin")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	require.Len(t, cfg.LLM.Providers, 2)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Providers[0].Type)
	assert.Equal(t, "gpt-4o", cfg.LLM.Providers[0].Model)
	assert.Equal(t, llm.ProviderPerplexity, cfg.LLM.Providers[1].Type)
	assert.Equal(t, "Europe/Berlin", cfg.Schedule.Location.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfig_BadTimezone(t *testing.T) {
	t.Setenv("SCHEDULE_TIMEZONE", "Mars/Olympus")
	_, err := LoadConfig(logger.Nop())
	assert.Error(t, err)
}

func TestWireLLM(t *testing.T) {
	ctx := context.Background()

	set, err := wireLLM(ctx, logger.Nop(), LLMConfig{})
	require.NoError(t, err)
	assert.Empty(t, set.Chat)

	path := filepath.Join(t.TempDir(), "backends.yaml")
	t.Setenv("TEST_OPENAI_KEY", "sk-file")
	require.NoError(t, os.WriteFile(path, []byte(`
extraction: extractor
providers:
  - name: chat
    type: openai
    api_key: ${TEST_OPENAI_KEY}
    model: gpt-4o-mini
  - name: extractor
    type: groq
    api_key: ${TEST_OPENAI_KEY}
    model: llama-3.1-8b-instant
`), 0o600))

	set, err = wireLLM(ctx, logger.Nop(), LLMConfig{BackendsFile: path, RequestsPerMinute: 60})
	require.NoError(t, err)
	assert.Equal(t, []string{"chat", "extractor"}, set.Names())
	require.NotNil(t, set.Extraction)
	assert.Equal(t, "extractor", set.Extraction.Name())

	_, err = wireLLM(ctx, logger.Nop(), LLMConfig{BackendsFile: path, Extraction: "missing"})
	assert.Error(t, err)
}

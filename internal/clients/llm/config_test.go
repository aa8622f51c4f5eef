package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

func TestLoadFileConfig_ExpandsEnv(t *testing.T) {
	t.Setenv("BRANDLENS_TEST_KEY", "sk-123")
	path := filepath.Join(t.TempDir(), "backends.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  - type: openai
    api_key: ${BRANDLENS_TEST_KEY}
    model: gpt-4o-mini
  - name: pplx
    type: perplexity
    api_key: literal
    requests_per_minute: 20
extraction: openai
`), 0o600))

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "sk-123", cfg.Providers[0].APIKey)
	assert.Equal(t, "openai", cfg.Providers[0].Name)
	assert.Equal(t, "pplx", cfg.Providers[1].Name)
	assert.Equal(t, 20, cfg.Providers[1].RequestsPerMinute)
	assert.Equal(t, "openai", cfg.Extraction)

	set, err := BuildSet(context.Background(), cfg.Providers, cfg.Extraction, 0, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"openai", "pplx"}, set.Names())
	assert.Equal(t, "openai", set.ExtractorFor(set.Chat[1]).Name())
}

func TestBuildSet_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := BuildSet(ctx, nil, "", 0, logger.Nop())
	assert.ErrorIs(t, err, ErrNoBackends)

	_, err = BuildSet(ctx, []ProviderConfig{{Type: ProviderOpenAI, APIKey: "k"}}, "missing", 0, logger.Nop())
	assert.Error(t, err)

	_, err = BuildSet(ctx, []ProviderConfig{{Type: "mystery", APIKey: "k"}}, "", 0, logger.Nop())
	assert.Error(t, err)

	set, err := BuildSet(ctx, []ProviderConfig{{Type: ProviderOpenAI, APIKey: "k"}}, "", 0, logger.Nop())
	require.NoError(t, err)
	assert.Same(t, set.Chat[0], set.ExtractorFor(set.Chat[0]))
}

func TestRateLimitedBackend_HonoursContext(t *testing.T) {
	fake := &Fake{BackendName: "fake", ModelName: "m", Respond: func(context.Context, Request) (string, error) { return "ok", nil }}
	b := NewRateLimitedBackend(fake, 1)

	_, err := b.Complete(context.Background(), Request{User: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = b.Complete(ctx, Request{User: "second"})
	require.Error(t, err, "second call inside the same minute should wait past the deadline")
	assert.Len(t, fake.Calls(), 1)
	assert.Equal(t, "fake", b.Name())

	assert.Same(t, Backend(fake), NewRateLimitedBackend(fake, 0))
}

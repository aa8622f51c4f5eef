package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderPerplexity ProviderType = "perplexity"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderGroq       ProviderType = "groq"
	ProviderGemini     ProviderType = "gemini"
)

var defaultBaseURLs = map[ProviderType]string{
	ProviderPerplexity: "https://api.perplexity.ai",
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
	ProviderGroq:       "https://api.groq.com/openai/v1",
}

// ProviderConfig is one configured backend, from env or the YAML file.
type ProviderConfig struct {
	Name              string       `yaml:"name"`
	Type              ProviderType `yaml:"type"`
	APIKey            string       `yaml:"api_key"`
	Model             string       `yaml:"model"`
	BaseURL           string       `yaml:"base_url"`
	Temperature       float32      `yaml:"temperature"`
	MaxTokens         int          `yaml:"max_tokens"`
	RequestsPerMinute int          `yaml:"requests_per_minute"`
}

type FileConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
	// Extraction names the backend used for the extraction stage.
	Extraction string `yaml:"extraction"`
}

// LoadFileConfig reads the YAML backend file. ${VAR} references in api keys
// and base URLs are expanded from the environment.
func LoadFileConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open llm backends file: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode llm backends file: %w", err)
	}
	for i := range cfg.Providers {
		cfg.Providers[i].APIKey = os.ExpandEnv(cfg.Providers[i].APIKey)
		cfg.Providers[i].BaseURL = os.ExpandEnv(cfg.Providers[i].BaseURL)
		if cfg.Providers[i].Name == "" {
			cfg.Providers[i].Name = string(cfg.Providers[i].Type)
		}
	}
	return &cfg, nil
}

// Build constructs a Backend for one provider config.
func Build(ctx context.Context, pc ProviderConfig, defaultRPM int, baseLog *logger.Logger) (Backend, error) {
	name := strings.TrimSpace(pc.Name)
	if name == "" {
		name = string(pc.Type)
	}
	var (
		b   Backend
		err error
	)
	switch pc.Type {
	case ProviderGemini:
		b, err = NewGeminiBackend(ctx, GeminiConfig{
			Name:        name,
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			Temperature: pc.Temperature,
			MaxTokens:   int32(pc.MaxTokens),
		}, baseLog)
	case ProviderOpenAI, ProviderPerplexity, ProviderOpenRouter, ProviderGroq:
		baseURL := pc.BaseURL
		if baseURL == "" {
			baseURL = defaultBaseURLs[pc.Type]
		}
		b, err = NewOpenAIBackend(OpenAIConfig{
			Name:        name,
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			BaseURL:     baseURL,
			Temperature: pc.Temperature,
			MaxTokens:   pc.MaxTokens,
			// Perplexity rejects response_format=json_object but takes json_schema.
			SupportsJSONMode:   pc.Type != ProviderPerplexity,
			SupportsJSONSchema: pc.Type == ProviderOpenAI || pc.Type == ProviderPerplexity,
		}, baseLog)
	default:
		return nil, fmt.Errorf("unknown llm provider type %q", pc.Type)
	}
	if err != nil {
		return nil, err
	}
	rpm := pc.RequestsPerMinute
	if rpm == 0 {
		rpm = defaultRPM
	}
	return NewRateLimitedBackend(b, rpm), nil
}

// Set is the configured backends: every chat backend is asked each prompt;
// Extraction, when non-nil, handles every extraction call.
type Set struct {
	Chat       []Backend
	Extraction Backend
}

// ExtractorFor returns the backend that extracts a transcript produced by chat.
func (s *Set) ExtractorFor(chat Backend) Backend {
	if s.Extraction != nil {
		return s.Extraction
	}
	return chat
}

func (s *Set) Names() []string {
	out := make([]string, 0, len(s.Chat))
	for _, b := range s.Chat {
		out = append(out, b.Name())
	}
	return out
}

var ErrNoBackends = errors.New("no llm backends configured")

// BuildSet builds every provider and resolves the extraction backend by name.
// An unknown extraction name is an error; an empty one means "same backend".
func BuildSet(ctx context.Context, providers []ProviderConfig, extraction string, defaultRPM int, baseLog *logger.Logger) (*Set, error) {
	if len(providers) == 0 {
		return nil, ErrNoBackends
	}
	set := &Set{}
	byName := map[string]Backend{}
	for _, pc := range providers {
		b, err := Build(ctx, pc, defaultRPM, baseLog)
		if err != nil {
			return nil, err
		}
		if _, dup := byName[b.Name()]; dup {
			return nil, fmt.Errorf("duplicate llm backend name %q", b.Name())
		}
		byName[b.Name()] = b
		set.Chat = append(set.Chat, b)
	}
	if extraction = strings.TrimSpace(extraction); extraction != "" {
		b, ok := byName[extraction]
		if !ok {
			return nil, fmt.Errorf("extraction backend %q is not configured", extraction)
		}
		set.Extraction = b
	}
	return set, nil
}

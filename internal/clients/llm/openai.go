package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// OpenAIConfig covers OpenAI and every OpenAI-compatible API (Perplexity,
// OpenRouter, Groq) through BaseURL.
type OpenAIConfig struct {
	Name        string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	// SupportsJSONMode enables response_format=json_object for JSON requests.
	SupportsJSONMode bool
	// SupportsJSONSchema enables response_format=json_schema when the request
	// carries a schema.
	SupportsJSONSchema bool
}

type OpenAIBackend struct {
	client *openai.Client
	cfg    OpenAIConfig
	log    *logger.Logger
}

func NewOpenAIBackend(cfg OpenAIConfig, baseLog *logger.Logger) (*OpenAIBackend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s: api key is required", cfg.Name)
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		log:    baseLog.With("client", "OpenAIBackend", "backend", cfg.Name),
	}, nil
}

func (b *OpenAIBackend) Name() string  { return b.cfg.Name }
func (b *OpenAIBackend) Model() string { return b.cfg.Model }

func (b *OpenAIBackend) Complete(ctx context.Context, req Request) (Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	chatReq := openai.ChatCompletionRequest{
		Model:       b.cfg.Model,
		Messages:    messages,
		Temperature: b.cfg.Temperature,
		MaxTokens:   b.cfg.MaxTokens,
	}
	chatReq.ResponseFormat = b.responseFormat(req)

	start := time.Now()
	resp, err := b.client.CreateChatCompletion(ctx, chatReq)
	latency := time.Since(start)
	if err != nil {
		b.log.Warn("chat completion failed", "model", b.cfg.Model, "latency_ms", latency.Milliseconds(), "error", err)
		return Completion{Model: b.cfg.Model, Latency: latency}, b.wrapErr(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Completion{Model: b.cfg.Model, Latency: latency}, fmt.Errorf("%s: %w", b.cfg.Name, ErrEmptyResponse)
	}

	model := resp.Model
	if model == "" {
		model = b.cfg.Model
	}
	out := Completion{
		Text:             resp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Latency:          latency,
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		b.log.Warn("chat completion truncated", "model", model, "max_tokens", b.cfg.MaxTokens, "completion_tokens", out.CompletionTokens)
		return out, fmt.Errorf("%s: %w", b.cfg.Name, ErrTruncated)
	}
	b.log.Debug("chat completion ok", "model", model, "total_tokens", resp.Usage.TotalTokens, "latency_ms", latency.Milliseconds())
	return out, nil
}

func (b *OpenAIBackend) responseFormat(req Request) *openai.ChatCompletionResponseFormat {
	switch {
	case !req.JSON:
		return nil
	case req.Schema != nil && b.cfg.SupportsJSONSchema:
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: jsonSchema(req.Schema),
			},
		}
	case b.cfg.SupportsJSONMode:
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	default:
		return nil
	}
}

// jsonSchema adapts a schema document to the json.Marshaler the client wants.
type jsonSchema map[string]any

func (s jsonSchema) MarshalJSON() ([]byte, error) { return json.Marshal(map[string]any(s)) }

func (b *OpenAIBackend) wrapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Backend: b.cfg.Name, Status: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &StatusError{Backend: b.cfg.Name, Status: reqErr.HTTPStatusCode, Err: err}
	}
	return fmt.Errorf("%s: %w", b.cfg.Name, err)
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type GeminiConfig struct {
	Name        string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
}

type GeminiBackend struct {
	client *genai.Client
	cfg    GeminiConfig
	log    *logger.Logger
}

func NewGeminiBackend(ctx context.Context, cfg GeminiConfig, baseLog *logger.Logger) (*GeminiBackend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Name == "" {
		cfg.Name = "gemini"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiBackend{
		client: client,
		cfg:    cfg,
		log:    baseLog.With("client", "GeminiBackend", "backend", cfg.Name),
	}, nil
}

func (b *GeminiBackend) Name() string  { return b.cfg.Name }
func (b *GeminiBackend) Model() string { return b.cfg.Model }

func (b *GeminiBackend) Close() error { return b.client.Close() }

func (b *GeminiBackend) Complete(ctx context.Context, req Request) (Completion, error) {
	// GenerativeModel carries per-request settings; build one per call.
	model := b.client.GenerativeModel(b.cfg.Model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr(b.cfg.Temperature),
		MaxOutputTokens: genai.Ptr(b.cfg.MaxTokens),
	}
	if req.JSON {
		model.ResponseMIMEType = "application/json"
		if req.Schema != nil {
			rs, err := geminiSchema(req.Schema)
			if err != nil {
				b.log.Warn("response schema not usable; falling back to json mode", "schema", req.SchemaName, "error", err)
			} else {
				model.ResponseSchema = rs
			}
		}
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	latency := time.Since(start)
	if err != nil {
		b.log.Warn("generate content failed", "model", b.cfg.Model, "latency_ms", latency.Milliseconds(), "error", err)
		return Completion{Model: b.cfg.Model, Latency: latency}, b.wrapErr(err)
	}
	out, err := b.completion(resp, latency)
	if errors.Is(err, ErrTruncated) {
		b.log.Warn("generate content truncated", "model", b.cfg.Model, "max_tokens", b.cfg.MaxTokens, "completion_tokens", out.CompletionTokens)
	}
	return out, err
}

// completion reads the first candidate. Hitting the token limit returns the
// partial text with ErrTruncated.
func (b *GeminiBackend) completion(resp *genai.GenerateContentResponse, latency time.Duration) (Completion, error) {
	out := Completion{Model: b.cfg.Model, Latency: latency}
	if resp == nil {
		return out, fmt.Errorf("%s: %w", b.cfg.Name, ErrEmptyResponse)
	}
	if u := resp.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.CompletionTokens = int(u.CandidatesTokenCount)
		out.TotalTokens = int(u.TotalTokenCount)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, fmt.Errorf("%s: %w", b.cfg.Name, ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	out.Text = sb.String()
	if strings.TrimSpace(out.Text) == "" {
		return out, fmt.Errorf("%s: %w", b.cfg.Name, ErrEmptyResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return out, fmt.Errorf("%s: %w", b.cfg.Name, ErrTruncated)
	}
	return out, nil
}

// geminiSchema converts a JSON Schema document into the subset Gemini
// accepts. Numeric bounds are dropped; ["T","null"] becomes a nullable T.
func geminiSchema(doc map[string]any) (*genai.Schema, error) {
	out := &genai.Schema{}
	typ, nullable, err := schemaType(doc["type"])
	if err != nil {
		return nil, err
	}
	out.Type = typ
	out.Nullable = nullable
	if d, ok := doc["description"].(string); ok {
		out.Description = d
	}
	if enum, ok := doc["enum"]; ok {
		vals, err := stringList(enum)
		if err != nil {
			return nil, fmt.Errorf("enum: %w", err)
		}
		out.Enum = vals
		out.Format = "enum"
	}
	switch typ {
	case genai.TypeObject:
		props, _ := doc["properties"].(map[string]any)
		if len(props) > 0 {
			out.Properties = make(map[string]*genai.Schema, len(props))
		}
		for name, raw := range props {
			sub, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("property %s: not an object", name)
			}
			ps, err := geminiSchema(sub)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			out.Properties[name] = ps
		}
		if req, ok := doc["required"]; ok {
			vals, err := stringList(req)
			if err != nil {
				return nil, fmt.Errorf("required: %w", err)
			}
			out.Required = vals
		}
	case genai.TypeArray:
		items, ok := doc["items"].(map[string]any)
		if !ok {
			return nil, errors.New("array without items")
		}
		is, err := geminiSchema(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = is
	}
	return out, nil
}

func schemaType(v any) (genai.Type, bool, error) {
	switch t := v.(type) {
	case string:
		typ, err := geminiType(t)
		return typ, false, err
	case []any:
		var (
			typ      genai.Type
			nullable bool
		)
		for _, raw := range t {
			name, ok := raw.(string)
			if !ok {
				return 0, false, fmt.Errorf("type entry %v is not a string", raw)
			}
			if name == "null" {
				nullable = true
				continue
			}
			if typ != genai.TypeUnspecified {
				return 0, false, fmt.Errorf("union type %v not supported", t)
			}
			parsed, err := geminiType(name)
			if err != nil {
				return 0, false, err
			}
			typ = parsed
		}
		if typ == genai.TypeUnspecified {
			return 0, false, errors.New("type has no non-null member")
		}
		return typ, nullable, nil
	default:
		return 0, false, fmt.Errorf("missing or invalid type %v", v)
	}
}

func geminiType(name string) (genai.Type, error) {
	switch name {
	case "object":
		return genai.TypeObject, nil
	case "array":
		return genai.TypeArray, nil
	case "string":
		return genai.TypeString, nil
	case "integer":
		return genai.TypeInteger, nil
	case "number":
		return genai.TypeNumber, nil
	case "boolean":
		return genai.TypeBoolean, nil
	default:
		return genai.TypeUnspecified, fmt.Errorf("unsupported type %q", name)
	}
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, raw := range t {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%v is not a string", raw)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}

func (b *GeminiBackend) wrapErr(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s: %w", b.cfg.Name, err)
	}
	return &StatusError{Backend: b.cfg.Name, Status: httpStatusFromCode(st.Code()), Err: err}
}

func httpStatusFromCode(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

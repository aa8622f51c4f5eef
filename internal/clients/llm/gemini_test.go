package llm

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/brandlens-backend/internal/pkg/httpx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/prompts"
)

func testGemini() *GeminiBackend {
	return &GeminiBackend{
		cfg: GeminiConfig{Name: "gemini", Model: "gemini-test", MaxTokens: 16},
		log: logger.Nop(),
	}
}

func textResponse(reason genai.FinishReason, parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: parts},
			FinishReason: reason,
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 7, CandidatesTokenCount: 5, TotalTokenCount: 12},
	}
}

func TestHTTPStatusFromCode(t *testing.T) {
	cases := map[codes.Code]int{
		codes.InvalidArgument:    http.StatusBadRequest,
		codes.FailedPrecondition: http.StatusBadRequest,
		codes.OutOfRange:         http.StatusBadRequest,
		codes.Unauthenticated:    http.StatusUnauthorized,
		codes.PermissionDenied:   http.StatusForbidden,
		codes.NotFound:           http.StatusNotFound,
		codes.ResourceExhausted:  http.StatusTooManyRequests,
		codes.DeadlineExceeded:   http.StatusGatewayTimeout,
		codes.Unavailable:        http.StatusServiceUnavailable,
		codes.Internal:           http.StatusInternalServerError,
		codes.Unknown:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, httpStatusFromCode(code), code.String())
	}
}

func TestGeminiWrapErr(t *testing.T) {
	b := testGemini()

	err := b.wrapErr(status.Error(codes.ResourceExhausted, "quota"))
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "gemini", se.Backend)
	assert.Equal(t, http.StatusTooManyRequests, httpx.StatusCode(err))
	assert.True(t, httpx.IsRetryableError(err))

	err = b.wrapErr(status.Error(codes.PermissionDenied, "bad key"))
	assert.False(t, httpx.IsRetryableError(err))

	plain := errors.New("dial failed")
	err = b.wrapErr(plain)
	assert.ErrorIs(t, err, plain)
	assert.False(t, errors.As(err, &se))
}

func TestGeminiCompletion(t *testing.T) {
	b := testGemini()

	out, err := b.completion(textResponse(genai.FinishReasonStop, genai.Text(`{"a":`), genai.Text(`1}`)), time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out.Text)
	assert.Equal(t, "gemini-test", out.Model)
	assert.Equal(t, 7, out.PromptTokens)
	assert.Equal(t, 5, out.CompletionTokens)
	assert.Equal(t, 12, out.TotalTokens)
	assert.Equal(t, time.Second, out.Latency)
}

func TestGeminiCompletion_Empty(t *testing.T) {
	b := testGemini()

	_, err := b.completion(&genai.GenerateContentResponse{}, 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = b.completion(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = b.completion(textResponse(genai.FinishReasonStop, genai.Text("  ")), 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = b.completion(nil, 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiCompletion_MaxTokens(t *testing.T) {
	b := testGemini()

	out, err := b.completion(textResponse(genai.FinishReasonMaxTokens, genai.Text(`{"predefined_brand_analysis": [`)), 0)
	require.ErrorIs(t, err, ErrTruncated)
	assert.NotErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, `{"predefined_brand_analysis": [`, out.Text)
	assert.Equal(t, 5, out.CompletionTokens)
}

func TestGeminiSchema_Extraction(t *testing.T) {
	s, err := geminiSchema(prompts.ExtractionSchema())
	require.NoError(t, err)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"predefined_brand_analysis", "discovered_competitor_analysis"}, s.Required)

	pre := s.Properties["predefined_brand_analysis"]
	require.NotNil(t, pre)
	assert.Equal(t, genai.TypeArray, pre.Type)
	item := pre.Items
	require.NotNil(t, item)
	assert.Equal(t, "found", item.Required[0])
	assert.Equal(t, genai.TypeBoolean, item.Properties["found"].Type)

	rank := item.Properties["rank_position"]
	assert.Equal(t, genai.TypeInteger, rank.Type)
	assert.True(t, rank.Nullable)

	sentiment := item.Properties["sentiment"]
	assert.Equal(t, genai.TypeString, sentiment.Type)
	assert.Equal(t, []string{"Positive", "Neutral", "Negative", "Mixed"}, sentiment.Enum)

	links := item.Properties["associated_links"]
	assert.Equal(t, genai.TypeArray, links.Type)
	assert.Equal(t, genai.TypeString, links.Items.Properties["url"].Type)
}

func TestGeminiSchema_Rejects(t *testing.T) {
	_, err := geminiSchema(map[string]any{"type": "tuple"})
	assert.Error(t, err)

	_, err = geminiSchema(map[string]any{"type": []any{"string", "integer"}})
	assert.Error(t, err)

	_, err = geminiSchema(map[string]any{"type": "array"})
	assert.Error(t, err)

	_, err = geminiSchema(map[string]any{})
	assert.Error(t, err)
}

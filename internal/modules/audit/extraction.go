package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/brandlens-backend/internal/domain"
)

var (
	// ErrMalformedOutput means the extraction text was not a single JSON object.
	ErrMalformedOutput = errors.New("malformed extraction output")
	// ErrSchemaViolation means the JSON decoded but failed validation.
	ErrSchemaViolation = errors.New("extraction output violates schema")
)

type AssociatedLink struct {
	URL               string `json:"url" validate:"required,max=2048"`
	IsDirectBrandLink bool   `json:"is_direct_brand_link"`
	CitationType      string `json:"citation_type" validate:"omitempty,oneof=direct review news comparison other"`
}

type BrandAnalysis struct {
	BrandName       string           `json:"brand_name" validate:"required,max=200"`
	MentionCount    *int             `json:"mention_count" validate:"required,min=0"`
	Sentiment       string           `json:"sentiment" validate:"required,oneof=Positive Neutral Negative Mixed"`
	RankPosition    *int             `json:"rank_position" validate:"omitempty,min=1"`
	ProminenceScore *int             `json:"prominence_score" validate:"required,min=0,max=10"`
	Context         string           `json:"context" validate:"max=4000"`
	AssociatedLinks []AssociatedLink `json:"associated_links" validate:"dive"`
}

type PredefinedBrandAnalysis struct {
	Found *bool `json:"found" validate:"required"`
	BrandAnalysis
}

type AggregateInsights struct {
	ShareOfVoiceRanking       []string `json:"share_of_voice_ranking"`
	CitationTransparencyScore int      `json:"citation_transparency_score" validate:"min=1,max=100"`
	RecommendationBias        string   `json:"recommendation_bias"`
}

// Extraction is the validated result of one extraction call.
type Extraction struct {
	Predefined []PredefinedBrandAnalysis `json:"predefined_brand_analysis" validate:"required,dive"`
	Discovered []BrandAnalysis           `json:"discovered_competitor_analysis" validate:"required,dive"`
	Aggregate  *AggregateInsights        `json:"aggregate_insights,omitempty" validate:"omitempty"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func extractionValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ParseExtraction decodes and validates model output. Markdown code fences
// around the object are tolerated; anything else that is not exactly one JSON
// object is ErrMalformedOutput. Unknown fields are ignored. Any validation
// failure rejects the whole payload with ErrSchemaViolation.
func ParseExtraction(raw string) (*Extraction, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}
	if !strings.HasPrefix(text, "{") {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedOutput)
	}

	var out Extraction
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s: expected %s, got %s", ErrSchemaViolation, typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedOutput)
	}

	out.normalize()
	if err := extractionValidator().Struct(&out); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, describeValidation(err))
	}
	return &out, nil
}

func (e *Extraction) normalize() {
	for i := range e.Predefined {
		e.Predefined[i].BrandAnalysis.normalize()
	}
	for i := range e.Discovered {
		e.Discovered[i].normalize()
	}
}

func (b *BrandAnalysis) normalize() {
	b.BrandName = strings.Join(strings.Fields(b.BrandName), " ")
	b.Context = strings.TrimSpace(b.Context)
	if s, ok := domain.ParseSentiment(b.Sentiment); ok {
		b.Sentiment = string(s)
	}
	for i := range b.AssociatedLinks {
		b.AssociatedLinks[i].URL = strings.TrimSpace(b.AssociatedLinks[i].URL)
		b.AssociatedLinks[i].CitationType = strings.ToLower(strings.TrimSpace(b.AssociatedLinks[i].CitationType))
	}
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop an info string such as "json"
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", ns, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", ns, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// Insights is the JSON stored on the extraction ModelResponse.
func (e *Extraction) Insights() []byte {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(e)
	return bytes.TrimSpace(buf.Bytes())
}

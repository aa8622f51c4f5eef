package prompts

import (
	"fmt"
	"strings"
)

func init() { RegisterAll() }

// RegisterAll registers every prompt the service issues. Safe to call again.
func RegisterAll() {
	RegisterSpec(Spec{
		Name:    PromptVisibilityChat,
		Version: 1,
		System: `You are a knowledgeable assistant answering a shopper's question.
Answer naturally and concretely. Name specific companies, products or services where relevant,
in the order you would recommend them, and cite the sources (URLs) you rely on.`,
		User: `{{.PromptText}}`,
		Validators: []Validator{
			requireField("PromptText", func(in Input) string { return in.PromptText }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptBrandExtraction,
		Version:    1,
		SchemaName: "brand_visibility_audit",
		Schema:     ExtractionSchema,
		System: `You are a brand-visibility auditor. You read an AI assistant's answer and report, as strict JSON,
how each brand is represented in it. Output JSON only: no prose, no markdown fences.`,
		User: `ORIGINAL PROMPT:
{{.PromptText}}

TARGET BRANDS (report every one of these in predefined_brand_analysis, with found=false when absent):
{{- if .TargetBrands}}
{{- range .TargetBrands}}
- {{.}}
{{- end}}
{{- else}}
(none)
{{- end}}

TRANSCRIPT TO AUDIT:
"""
{{.Transcript}}
"""

Return a single JSON object with exactly this shape:
{
  "predefined_brand_analysis": [
    {
      "brand_name": string,              // one of the target brands, spelled as listed
      "found": boolean,                  // true if the transcript mentions the brand
      "mention_count": integer,          // number of mentions, 0 when not found
      "sentiment": "Positive" | "Neutral" | "Negative" | "Mixed",
      "rank_position": integer | null,   // 1-based position in any recommendation order, null if unranked
      "prominence_score": integer,       // 0-10, how central the brand is to the answer
      "context": string,                 // one sentence quoting or paraphrasing how it is described
      "associated_links": [
        { "url": string, "is_direct_brand_link": boolean, "citation_type": "direct" | "review" | "news" | "comparison" | "other" }
      ]
    }
  ],
  "discovered_competitor_analysis": [
    // every other brand the transcript mentions, same fields as above without "found"
  ],
  "aggregate_insights": {
    "share_of_voice_ranking": [string],      // all brands, most visible first
    "citation_transparency_score": integer,  // 1-100, how well claims are sourced
    "recommendation_bias": string            // short narrative on who the answer favours and why
  }
}

Rules:
- Rank positions are unique: no two brands share the same rank_position.
- Do not invent links that are not in the transcript.
- Use null, not 0, for brands without a rank.`,
		Validators: []Validator{
			requireField("PromptText", func(in Input) string { return in.PromptText }),
			requireField("Transcript", func(in Input) string { return in.Transcript }),
		},
	})
}

func requireField(name string, get func(Input) string) Validator {
	return func(in Input) error {
		if strings.TrimSpace(get(in)) == "" {
			return fmt.Errorf("missing %s", name)
		}
		return nil
	}
}

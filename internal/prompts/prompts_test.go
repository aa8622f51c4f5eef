package prompts

import (
	"strings"
	"testing"
)

func TestBuildExtractionPrompt_EmbedsInputsAndSchema(t *testing.T) {
	out := BuildExtractionPrompt("best widget providers?", "Acme is the top pick, see https://acme.com.", []string{"Acme", " Globex ", "acme", ""})

	for _, want := range []string{
		"best widget providers?",
		"Acme is the top pick, see https://acme.com.",
		"- Acme",
		"- Globex",
		"predefined_brand_analysis",
		"discovered_competitor_analysis",
		"aggregate_insights",
		"citation_transparency_score",
		"share_of_voice_ranking",
		"recommendation_bias",
		"rank_position",
		"prominence_score",
		"associated_links",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("extraction prompt missing %q", want)
		}
	}
	if strings.Count(out, "- Acme") != 1 {
		t.Fatalf("duplicate target brand rendered:\n%s", out)
	}
	if strings.Contains(out, "<no value>") {
		t.Fatalf("template rendered a missing key")
	}
}

func TestBuildExtractionPrompt_NoTargets(t *testing.T) {
	out := BuildExtractionPrompt("q", "t", nil)
	if !strings.Contains(out, "(none)") {
		t.Fatalf("expected empty brand list placeholder")
	}
}

func TestBuild_ValidatesRequiredFields(t *testing.T) {
	if _, err := Build(PromptBrandExtraction, Input{PromptText: "q"}); err == nil {
		t.Fatalf("expected missing transcript to fail")
	}
	p, err := Build(PromptBrandExtraction, ExtractionInput("q", "t", []string{"Acme"}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.SchemaName != "brand_visibility_audit" || p.Schema == nil {
		t.Fatalf("schema not attached: %+v", p)
	}
	name, schema, ok := Schema(PromptBrandExtraction)
	if !ok || name != p.SchemaName || schema["type"] != "object" {
		t.Fatalf("Schema lookup mismatch: %q %v", name, ok)
	}
	if _, err := Build("nope", Input{}); err == nil {
		t.Fatalf("expected unknown prompt error")
	}
}

func TestExtractionSchemaShape(t *testing.T) {
	s := ExtractionSchema()
	props := s["properties"].(map[string]any)
	pre := props["predefined_brand_analysis"].(map[string]any)["items"].(map[string]any)
	req := pre["required"].([]string)
	if req[0] != "found" {
		t.Fatalf("predefined entries must require found, got %v", req)
	}
	disc := props["discovered_competitor_analysis"].(map[string]any)["items"].(map[string]any)
	if _, ok := disc["properties"].(map[string]any)["found"]; ok {
		t.Fatalf("discovered entries must not carry found")
	}
}

package prompts

func associatedLinkSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"url":                  StringSchema(),
		"is_direct_brand_link": BoolSchema(),
		"citation_type":        EnumSchema("direct", "review", "news", "comparison", "other"),
	}, []string{"url", "is_direct_brand_link"})
}

func brandAnalysisProperties() map[string]any {
	return map[string]any{
		"brand_name":       StringSchema(),
		"mention_count":    IntRangeSchema(0, 1000),
		"sentiment":        EnumSchema("Positive", "Neutral", "Negative", "Mixed"),
		"rank_position":    IntOrNullSchema(1),
		"prominence_score": IntRangeSchema(0, 10),
		"context":          StringSchema(),
		"associated_links": ArraySchema(associatedLinkSchema()),
	}
}

var brandAnalysisRequired = []string{"brand_name", "mention_count", "sentiment", "rank_position", "prominence_score", "context", "associated_links"}

// ExtractionSchema is the JSON schema the extraction model must satisfy.
func ExtractionSchema() map[string]any {
	predefined := brandAnalysisProperties()
	predefined["found"] = BoolSchema()
	predefinedRequired := append([]string{"found"}, brandAnalysisRequired...)

	return ObjectSchema(map[string]any{
		"predefined_brand_analysis":      ArraySchema(ObjectSchema(predefined, predefinedRequired)),
		"discovered_competitor_analysis": ArraySchema(ObjectSchema(brandAnalysisProperties(), brandAnalysisRequired)),
		"aggregate_insights": ObjectSchema(map[string]any{
			"share_of_voice_ranking":      StringArraySchema(),
			"citation_transparency_score": IntRangeSchema(1, 100),
			"recommendation_bias":         StringSchema(),
		}, []string{"share_of_voice_ranking", "citation_transparency_score", "recommendation_bias"}),
	}, []string{"predefined_brand_analysis", "discovered_competitor_analysis"})
}

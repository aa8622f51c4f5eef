package prompts

type PromptName string

const (
	// Chat stage: the question exactly as an end user would ask it.
	PromptVisibilityChat PromptName = "visibility_chat"
	// Extraction stage: audit a transcript for brand visibility.
	PromptBrandExtraction PromptName = "brand_extraction"
)

package prompts

import "strings"

// BuildExtractionPrompt renders the extraction instruction as one string: the
// target brand list, the original prompt, the transcript and the required
// output schema. It never fails; empty inputs render as empty sections.
func BuildExtractionPrompt(promptText, transcript string, targetBrands []string) string {
	t, ok := lookup(PromptBrandExtraction)
	if !ok {
		RegisterAll()
		t, _ = lookup(PromptBrandExtraction)
	}
	in := ExtractionInput(promptText, transcript, targetBrands)
	return Prompt{System: t.System(in), User: t.User(in)}.Text()
}

// ExtractionInput normalises the brand list (trimmed, blanks and
// case-insensitive duplicates dropped, original order kept).
func ExtractionInput(promptText, transcript string, targetBrands []string) Input {
	seen := make(map[string]bool, len(targetBrands))
	brands := make([]string, 0, len(targetBrands))
	for _, b := range targetBrands {
		b = strings.TrimSpace(b)
		k := strings.ToLower(b)
		if b == "" || seen[k] {
			continue
		}
		seen[k] = true
		brands = append(brands, b)
	}
	return Input{
		PromptText:      strings.TrimSpace(promptText),
		Transcript:      strings.TrimSpace(transcript),
		TargetBrands:    brands,
		TargetBrandsCSV: strings.Join(brands, ", "),
	}
}

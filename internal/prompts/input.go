package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	PromptText string
	Topic      string
	Transcript string
	// TargetBrands renders as a bulleted list; TargetBrandsCSV as one line.
	TargetBrands    []string
	TargetBrandsCSV string
}

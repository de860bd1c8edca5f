package scoring

// Policy version strings embedded in every result so historical scores stay
// interpretable after threshold tables, weights, or marker lists change.
const (
	// ScorerVersion covers the threshold tables, tier offsets, and weights.
	ScorerVersion = "scorer-v3.1"

	// PromptVersion covers the scenario prompt set sessions were run against.
	PromptVersion = "prompts-v2"
)

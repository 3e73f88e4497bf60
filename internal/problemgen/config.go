package problemgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the LLM response. Solutions of
	// killer problems are long; keep this generous.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorStems is the maximum number of prior stems to include in
	// the prompt for deduplication.
	MaxPriorStems int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     4096,
		Temperature:   0.8,
		MaxPriorStems: 5,
	}
}

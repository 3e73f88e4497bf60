package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// FallbackModel is a second model on the same provider that serves
	// requests while the primary one is rate limited. Empty disables it.
	FallbackModel string

	// MaxConcurrent caps the number of in-flight calls across the whole
	// process. Zero means unlimited. Per-call timeouts belong to the
	// pipeline config.
	MaxConcurrent int
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-sonnet"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-pro"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "anthropic/claude-sonnet-4"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults. Problem
// generation needs a strong model, so the defaults favor the larger tiers.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Gemini: GeminiConfig{
			Model: "gemini-pro",
		},
		OpenRouter: OpenRouterConfig{
			Model: "anthropic/claude-sonnet-4",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		MaxConcurrent: 4,
	}
}

// ConfigFromEnv builds a Config from SUNEUNG_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setString(&cfg.Provider, "SUNEUNG_LLM_PROVIDER")
	setString(&cfg.FallbackModel, "SUNEUNG_LLM_FALLBACK_MODEL")

	setString(&cfg.Anthropic.APIKey, "SUNEUNG_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "SUNEUNG_ANTHROPIC_MODEL")

	setString(&cfg.OpenAI.APIKey, "SUNEUNG_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "SUNEUNG_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "SUNEUNG_OPENAI_BASE_URL")

	setString(&cfg.Gemini.APIKey, "SUNEUNG_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "SUNEUNG_GEMINI_MODEL")

	setString(&cfg.OpenRouter.APIKey, "SUNEUNG_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "SUNEUNG_OPENROUTER_MODEL")
	setString(&cfg.OpenRouter.BaseURL, "SUNEUNG_OPENROUTER_BASE_URL")

	if v := os.Getenv("SUNEUNG_LLM_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxConcurrent = n
		}
	}

	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig checks standard API key env vars in priority order
// (Anthropic → OpenAI → Gemini → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("SUNEUNG_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("SUNEUNG_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("SUNEUNG_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("SUNEUNG_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max concurrent calls must be >= 0, got %d", c.MaxConcurrent)
	}
	return nil
}

// withModel returns a copy of c whose selected provider uses model.
func (c Config) withModel(model string) Config {
	switch c.Provider {
	case "anthropic":
		c.Anthropic.Model = model
	case "openai":
		c.OpenAI.Model = model
	case "gemini":
		c.Gemini.Model = model
	case "openrouter":
		c.OpenRouter.Model = model
	}
	return c
}

package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/suneung/internal/store"
)

// NewProvider creates a Provider from configuration.
//
// Middleware order: caller → retry → limit → logging → fallback → base.
// Retries wait outside the concurrency ceiling and each attempt is logged
// once, under the model that finally answered it. Retry is left out when
// Retry.MaxAttempts is 1 or less.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := newBaseProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	if cfg.Provider == "mock" {
		return base, nil
	}

	if cfg.FallbackModel != "" {
		secondary, err := newBaseProvider(ctx, cfg.withModel(cfg.FallbackModel))
		if err != nil {
			return nil, fmt.Errorf("initializing fallback model %s: %w", cfg.FallbackModel, err)
		}
		base = WithFallback(base, secondary)
	}

	logged := WithLogging(base, cfg.Provider, eventRepo)
	limited := WithLimit(logged, cfg.MaxConcurrent)
	if cfg.Retry.MaxAttempts <= 1 {
		return limited, nil
	}
	return WithRetry(limited, cfg.Retry), nil
}

// EnvConfig resolves the provider config from SUNEUNG_* variables. When
// the selected provider has no key, the standard vendor API key variables
// are checked instead.
func EnvConfig() Config {
	cfg := ConfigFromEnv()
	if cfg.Validate() != nil {
		if discovered, ok := DiscoverConfig(); ok {
			discovered.FallbackModel = cfg.FallbackModel
			discovered.MaxConcurrent = cfg.MaxConcurrent
			cfg = discovered
		}
	}
	return cfg
}

// NewProviderFromEnv builds a provider from EnvConfig.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo) (Provider, error) {
	return NewProvider(ctx, EnvConfig(), eventRepo)
}

func newBaseProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		return NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

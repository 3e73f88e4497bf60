package llm

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// FallbackProvider switches to a secondary model once the primary one is
// rate limited. The switch is permanent for the life of the provider.
type FallbackProvider struct {
	primary   Provider
	secondary Provider
	switched  atomic.Bool
}

// WithFallback wraps primary so that the rate-limited call and every call
// after it go to secondary. A nil secondary returns primary unchanged.
func WithFallback(primary, secondary Provider) Provider {
	if secondary == nil {
		return primary
	}
	return &FallbackProvider{primary: primary, secondary: secondary}
}

func (f *FallbackProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if f.switched.Load() {
		return f.secondary.Generate(ctx, req)
	}

	resp, err := f.primary.Generate(ctx, req)
	var rl *ErrRateLimit
	if err == nil || !errors.As(err, &rl) || ctx.Err() != nil {
		return resp, err
	}

	if f.switched.CompareAndSwap(false, true) {
		slog.Warn("primary model rate limited, switching to fallback",
			"primary", f.primary.ModelID(),
			"fallback", f.secondary.ModelID(),
			"purpose", PurposeFrom(ctx))
	}
	return f.secondary.Generate(ctx, req)
}

// ModelID reports the model currently answering calls.
func (f *FallbackProvider) ModelID() string {
	if f.switched.Load() {
		return f.secondary.ModelID()
	}
	return f.primary.ModelID()
}

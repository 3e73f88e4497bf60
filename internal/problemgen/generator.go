package problemgen

import (
	"context"

	"github.com/abhisek/suneung/internal/problem"
)

// Generator produces problem drafts using an LLM provider.
type Generator interface {
	// Generate produces a single draft for the input request. The draft is
	// repaired and normalized but not yet filtered or scored.
	Generate(ctx context.Context, input GenerateInput) (*problem.Draft, error)
}

// GenerateInput is the context of one generation call.
type GenerateInput struct {
	Request problem.Request

	// PriorStems are stems the model must not repeat, oldest first.
	PriorStems []string
}

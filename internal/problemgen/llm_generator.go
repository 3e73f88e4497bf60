package problemgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/repair"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// Generate produces a single draft for the input request.
//
// Service errors are returned as *problem.TransientServiceFailure and
// unrepairable responses as *problem.ParseFailure. A response cut off at
// the token limit is handed to the repair layer, which can often close it.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*problem.Draft, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeGenerate)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      ProblemSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	content, err := ResponseText("generate", resp, err)
	if err != nil {
		return nil, err
	}

	d, err := repair.Parse(content, input.Request.Format, ProblemSchema)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ResponseText returns the text of a provider call, falling back to the
// partial text of a response cut off at the token limit. Failed calls come
// back as *problem.TransientServiceFailure, except cancellation of the
// caller, which passes through.
func ResponseText(op string, resp *llm.Response, err error) (string, error) {
	if err == nil {
		return string(resp.Content), nil
	}
	var truncated *llm.ErrMaxTokensExceeded
	if errors.As(err, &truncated) {
		if len(truncated.Content) == 0 {
			return "", &problem.ParseFailure{Err: err}
		}
		return string(truncated.Content), nil
	}
	if !llm.Transient(err) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return "", &problem.TransientServiceFailure{Op: op, Err: err}
}

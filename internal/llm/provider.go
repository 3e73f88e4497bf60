package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its output. When the
	// request carries a Schema, the provider asks for JSON through its
	// native structured output mechanism, but the Content is returned as
	// produced: models still emit fenced, truncated or otherwise malformed
	// JSON, and callers are expected to repair and validate it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Generation and review are
	// single-turn; revision sends the original draft and critique as one
	// user message.
	Messages []Message

	// Schema is the JSON Schema the response should conform to.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response. Zero
	// selects DefaultMaxTokens.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// DefaultMaxTokens is used when a request leaves MaxTokens unset.
const DefaultMaxTokens = 4096

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (used as tool name for Anthropic,
	// schema name for OpenAI). Kebab-case, e.g. "csat-problem".
	Name string

	// Description is a human-readable description of what this schema
	// represents. Sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any

	// Strict requests strict schema adherence where the provider supports
	// it. OpenAI strict mode requires every property to be required, so
	// schemas with optional fields leave this off.
	Strict bool
}

// Response holds the LLM's output.
type Response struct {
	// Content is the raw generated text. It is usually JSON when a Schema
	// was set, but is not guaranteed to parse.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped, normalized to one of
	// the Stop constants.
	StopReason string
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"

	// StopRefusal covers refusals and safety or content filters. The
	// content, if any, is not a usable problem.
	StopRefusal = "refusal"
)

// Truncated reports whether generation hit the token limit.
func (r *Response) Truncated() bool {
	return r.StopReason == StopMaxTokens
}

// Refused reports whether the model declined or was filtered.
func (r *Response) Refused() bool {
	return r.StopReason == StopRefusal
}

// checkStop turns truncated and refused responses into errors. Truncated
// content stays on the error so callers can still attempt a repair.
func checkStop(resp *Response) (*Response, error) {
	switch {
	case resp.Truncated():
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	case resp.Refused():
		return nil, &ErrInvalidResponse{
			Content: resp.Content,
			Err:     errors.New("model refused or output was filtered"),
		}
	}
	return resp, nil
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

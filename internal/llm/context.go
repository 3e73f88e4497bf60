package llm

import "context"

type contextKey string

const (
	purposeKey   contextKey = "llm_purpose"
	candidateKey contextKey = "llm_candidate"
)

// Purpose labels used by the pipeline.
const (
	PurposeGenerate = "problem-gen"
	PurposeReview   = "review"
	PurposeRevise   = "revise"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithCandidate attaches the candidate ID a call is made for.
func WithCandidate(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, candidateKey, id)
}

// CandidateFrom extracts the candidate ID from the context, or "".
func CandidateFrom(ctx context.Context) string {
	v, _ := ctx.Value(candidateKey).(string)
	return v
}

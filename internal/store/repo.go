package store

import (
	"context"
	"time"

	"github.com/abhisek/suneung/internal/problem"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit       int       // max results (0 = unlimited)
	After       int64     // sequence > After
	Before      int64     // sequence < Before
	From        time.Time // timestamp >= From
	To          time.Time // timestamp <= To
	Purpose     string    // exact purpose match
	CandidateID string    // exact candidate match
}

// RecordFilter narrows record listings. Zero fields match everything.
type RecordFilter struct {
	Status problem.Status
	Track  problem.Track
	Grade  problem.Grade
	Limit  int
}

// RecordRepo persists the latest record of every candidate.
type RecordRepo interface {
	// Save inserts the record or replaces the stored one with the same ID.
	Save(ctx context.Context, rec problem.Record) error

	// Get returns the record with the given ID, or nil if none exists.
	Get(ctx context.Context, id string) (*problem.Record, error)

	// List returns matching records, most recently updated first.
	List(ctx context.Context, f RecordFilter) ([]problem.Record, error)

	// CountByStatus returns the number of records per status.
	CountByStatus(ctx context.Context) (map[problem.Status]int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	CandidateID  string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// TransitionEventData captures one candidate state change.
type TransitionEventData struct {
	CandidateID string
	From        problem.Status
	To          problem.Status
	Revision    int
	Reason      string
}

// TransitionEvent is a stored state change.
type TransitionEvent struct {
	Sequence  int64
	Timestamp time.Time
	TransitionEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to pipeline events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendTransition records a candidate state change.
	AppendTransition(ctx context.Context, data TransitionEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// Transitions returns the state changes of a candidate in order.
	Transitions(ctx context.Context, candidateID string) ([]TransitionEvent, error)
}

package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableCandidates  = "candidates"
	tableLLMRequests = "llm_request_events"
	tablePipeline    = "pipeline_events"
)

// unbounded marks a text column without a length limit.
const unbounded = 2147483647

var (
	// candidatesColumns holds the latest persisted record of each candidate.
	// The full record is kept as JSON; the other columns exist for filtering.
	candidatesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "status", Type: field.TypeString},
		{Name: "track", Type: field.TypeString},
		{Name: "tier", Type: field.TypeString},
		{Name: "format", Type: field.TypeString},
		{Name: "category", Type: field.TypeString, Default: ""},
		{Name: "grade", Type: field.TypeString, Default: ""},
		{Name: "score", Type: field.TypeInt, Default: 0},
		{Name: "revision_count", Type: field.TypeInt, Default: 0},
		{Name: "schema_version", Type: field.TypeString},
		{Name: "record", Type: field.TypeString, Size: unbounded},
	}
	candidatesTable = &schema.Table{
		Name:       tableCandidates,
		Columns:    candidatesColumns,
		PrimaryKey: []*schema.Column{candidatesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "candidate_status", Columns: []*schema.Column{candidatesColumns[3]}},
			{Name: "candidate_track", Columns: []*schema.Column{candidatesColumns[4]}},
			{Name: "candidate_grade", Columns: []*schema.Column{candidatesColumns[8]}},
		},
	}

	// llmRequestColumns records every LLM API call for cost tracking and
	// debugging.
	llmRequestColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "candidate_id", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: unbounded, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: unbounded, Default: ""},
	}
	llmRequestTable = &schema.Table{
		Name:       tableLLMRequests,
		Columns:    llmRequestColumns,
		PrimaryKey: []*schema.Column{llmRequestColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestColumns[5]}},
			{Name: "llmrequestevent_candidate_id", Columns: []*schema.Column{llmRequestColumns[6]}},
		},
	}

	// pipelineColumns records every state transition of every candidate.
	pipelineColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "candidate_id", Type: field.TypeString},
		{Name: "from_status", Type: field.TypeString},
		{Name: "to_status", Type: field.TypeString},
		{Name: "revision", Type: field.TypeInt, Default: 0},
		{Name: "reason", Type: field.TypeString, Size: unbounded, Default: ""},
	}
	pipelineTable = &schema.Table{
		Name:       tablePipeline,
		Columns:    pipelineColumns,
		PrimaryKey: []*schema.Column{pipelineColumns[0]},
		Indexes: []*schema.Index{
			{Name: "pipelineevent_candidate_id", Columns: []*schema.Column{pipelineColumns[3]}},
		},
	}

	// tables lists every table created by auto-migration.
	tables = []*schema.Table{
		candidatesTable,
		llmRequestTable,
		pipelineTable,
	}
)

package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-problem",
		Description: "A generated problem",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"stem":   map[string]any{"type": "string"},
				"points": map[string]any{"type": "integer", "minimum": 2, "maximum": 4},
				"tier":   map[string]any{"type": "string", "enum": []any{"low", "mid", "high"}},
			},
			"required": []any{"stem", "points"},
		},
	}
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"stem":"함수 f(x)의 극솟값은?","points":3,"tier":"mid"}`, false},
		{"optional omitted", `{"stem":"수열의 극한값은?","points":2}`, false},
		{"missing required", `{"stem":"적분값은?"}`, true},
		{"wrong type", `{"stem":"확률은?","points":"three"}`, true},
		{"out of range", `{"stem":"확률은?","points":5}`, true},
		{"invalid enum", `{"stem":"넓이는?","points":4,"tier":"killer"}`, true},
		{"malformed", `{stem: 극한}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(testSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
		})
	}
}

func TestValidateJSON_EmptyResponse(t *testing.T) {
	raw := json.RawMessage(``)
	err := ValidateJSON(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestValidateJSON_NilSchema(t *testing.T) {
	raw := json.RawMessage(`{"anything":"goes"}`)
	err := ValidateJSON(nil, raw)
	if err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateJSON_NestedCritique(t *testing.T) {
	schema := &Schema{
		Name:        "test-review-verdict",
		Description: "Review verdict with a nested difficulty note",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"difficulty": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"grade": map[string]any{"type": "string"},
					},
					"required": []any{"grade"},
				},
				"step_minutes": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
			"required": []any{"difficulty", "step_minutes"},
		},
	}

	valid := json.RawMessage(`{"difficulty":{"grade":"killer"},"step_minutes":[5,8,12]}`)
	if err := ValidateJSON(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"difficulty":{"grade":"killer"},"step_minutes":["five","eight"]}`)
	if err := ValidateJSON(schema, invalid); err == nil {
		t.Fatal("expected error for wrong array item type")
	}

	missing := json.RawMessage(`{"difficulty":{},"step_minutes":[]}`)
	if err := ValidateJSON(schema, missing); err == nil {
		t.Fatal("expected error for missing nested grade")
	}
}

func TestValidateValue_IntegerAnswer(t *testing.T) {
	schema := &Schema{
		Name: "test-answer-index",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"answer_index": map[string]any{"type": "integer", "minimum": 0, "maximum": 4},
			},
			"required": []any{"answer_index"},
		},
	}

	if err := ValidateValue(schema, map[string]any{"answer_index": float64(3)}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := ValidateValue(schema, map[string]any{"answer_index": 2.5}); err == nil {
		t.Fatal("expected error for fractional index")
	}
	if err := ValidateValue(schema, map[string]any{"answer_index": 7}); err == nil {
		t.Fatal("expected error for out of range index")
	}
}

package llm

import (
	"slices"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"stem":   map[string]any{"type": "string", "minLength": 10},
			"answer": map[string]any{"type": "string"},
			"points": map[string]any{"type": "integer", "minimum": 2, "maximum": 4},
			"tier":   map[string]any{"type": "string", "enum": []any{"low", "mid", "high"}},
			"choices": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 5,
				"maxItems": 5,
			},
			"hint": map[string]any{"type": "string"},
		},
		"required": []any{"stem", "answer"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 6 {
		t.Fatalf("expected 6 properties, got %d", len(schema.Properties))
	}
	want := []string{"stem", "answer", "choices", "hint", "points", "tier"}
	if !slices.Equal(schema.PropertyOrdering, want) {
		t.Fatalf("ordering = %v, want %v", schema.PropertyOrdering, want)
	}

	points := schema.Properties["points"]
	if points.Type != genai.TypeInteger {
		t.Fatalf("expected INTEGER for points, got %s", points.Type)
	}
	if points.Minimum == nil || *points.Minimum != 2 || points.Maximum == nil || *points.Maximum != 4 {
		t.Fatalf("points bounds not carried: %v %v", points.Minimum, points.Maximum)
	}
	if stem := schema.Properties["stem"]; stem.MinLength == nil || *stem.MinLength != 10 {
		t.Fatal("stem minLength not carried")
	}
	choices := schema.Properties["choices"]
	if choices.Items.Type != genai.TypeString {
		t.Fatalf("expected STRING items, got %s", choices.Items.Type)
	}
	if choices.MinItems == nil || *choices.MinItems != 5 || choices.MaxItems == nil || *choices.MaxItems != 5 {
		t.Fatal("choices item bounds not carried")
	}
	if len(schema.Properties["tier"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["tier"].Enum))
	}
}

func TestBuildGeminiSchema_DecodedNumbers(t *testing.T) {
	// Schemas decoded from JSON carry float64 bounds.
	schema := buildGeminiSchema(map[string]any{"type": "number", "minimum": 0.5, "maximum": float64(100)})
	if *schema.Minimum != 0.5 || *schema.Maximum != 100 {
		t.Fatalf("bounds = %v..%v", *schema.Minimum, *schema.Maximum)
	}
}

func TestMapGeminiStopReason(t *testing.T) {
	candidate := func(r genai.FinishReason) *genai.GenerateContentResponse {
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: r}}}
	}
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"stop", candidate("STOP"), StopEnd},
		{"max tokens", candidate("MAX_TOKENS"), StopMaxTokens},
		{"safety", candidate("SAFETY"), StopRefusal},
		{"recitation", candidate("RECITATION"), StopRefusal},
		{"blocked prompt", &genai.GenerateContentResponse{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: "SAFETY"},
		}, StopRefusal},
		{"no candidates", &genai.GenerateContentResponse{}, StopEnd},
	}
	for _, tt := range tests {
		if got := mapGeminiStopReason(tt.resp); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

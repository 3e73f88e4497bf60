package problemgen

import "github.com/abhisek/suneung/internal/llm"

// ProblemSchema defines the JSON schema for generation and revision
// responses. Answers are strings on the wire; the repair layer maps them to
// a choice index or a canonical number.
var ProblemSchema = &llm.Schema{
	Name:        "csat-problem",
	Description: "A single Korean CSAT mathematics problem with answer and worked solution",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"stem": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The problem statement in Korean. Math in LaTeX between $ signs.",
			},
			"choices": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"description": "Exactly 5 options without ①-⑤ markers for multiple choice. Empty for short answer.",
			},
			"answer": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Multiple choice: the correct option number 1-5. Short answer: a natural number from 1 to 999.",
			},
			"solution": map[string]any{
				"type":        "string",
				"description": "Step-by-step worked solution in Korean",
			},
		},
		"required": []any{"stem", "answer"},
	},
}

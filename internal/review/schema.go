package review

import "github.com/abhisek/suneung/internal/llm"

// ReviewSchema defines the JSON schema of a reviewer verdict.
var ReviewSchema = &llm.Schema{
	Name:        "csat-review",
	Description: "Review verdict for a generated CSAT mathematics problem",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pass": map[string]any{
				"type":        "boolean",
				"description": "true if the problem can be used as is",
			},
			"score": map[string]any{
				"type":        "number",
				"minimum":     1,
				"maximum":     10,
				"description": "Appropriateness score from 1 (unusable) to 10 (exam ready)",
			},
			"issues": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"description": "Problems found, each prefixed with [교육과정], [수학 오류], [난이도] or [기타]",
			},
			"suggestions": map[string]any{
				"type":        "string",
				"description": "Concrete improvement suggestions in Korean",
			},
		},
		"required": []any{"pass", "score"},
	},
}

package repair

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
)

// Decode repairs raw, validates it against schema and unmarshals it into v.
// Any failure is reported as *problem.ParseFailure.
func Decode(raw string, schema *llm.Schema, v any) (Result, error) {
	res, err := Repair(raw)
	if err != nil {
		return res, err
	}
	if err := llm.ValidateJSON(schema, json.RawMessage(res.Text)); err != nil {
		return res, &problem.ParseFailure{Raw: raw, Steps: res.Steps, Err: err}
	}
	if err := json.Unmarshal([]byte(res.Text), v); err != nil {
		return res, &problem.ParseFailure{Raw: raw, Steps: res.Steps, Err: fmt.Errorf("decode: %w", err)}
	}
	return res, nil
}

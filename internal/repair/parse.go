package repair

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
)

// Field aliases accepted from the services, in lookup order.
var (
	stemKeys     = []string{"stem", "question", "problem", "problem_text"}
	choiceKeys   = []string{"choices", "options"}
	answerKeys   = []string{"answer", "correct_answer", "correct_choice"}
	indexKeys    = []string{"answer_index", "correct_index"}
	solutionKeys = []string{"solution", "explanation", "solution_process"}
	wrapperKeys  = []string{"problem", "result", "data"}
)

// choiceMarkerRe finds inline choice markers when all choices arrive in a
// single string: "① 1 ② 2 ...", "(1) a (2) b", "1) a 2) b".
var choiceMarkerRe = regexp.MustCompile(`[①-⑨]|\([1-9]\)|(?:^|\s)[1-9]\)`)

// wireProblem is the canonical shape validated against the problem schema.
type wireProblem struct {
	Stem     string   `json:"stem,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Solution string   `json:"solution,omitempty"`
}

// Parse repairs a raw service response and converts it into a draft of the
// given format. Choices and answers are normalized but never invented: a
// short choice list stays short for the curriculum filter to reject.
func Parse(raw string, format problem.Format, schema *llm.Schema) (problem.Draft, error) {
	res, err := Repair(raw)
	if err != nil {
		return problem.Draft{}, err
	}
	fail := func(err error) (problem.Draft, error) {
		return problem.Draft{}, &problem.ParseFailure{Raw: raw, Steps: res.Steps, Err: err}
	}

	obj, err := decodeObject(res.Text)
	if err != nil {
		return fail(err)
	}
	obj = unwrap(obj)

	w := wireProblem{
		Stem:     strings.TrimSpace(stringValue(lookup(obj, stemKeys))),
		Choices:  splitChoices(lookup(obj, choiceKeys)),
		Solution: strings.TrimSpace(stringValue(lookup(obj, solutionKeys))),
	}
	answerRaw := lookup(obj, answerKeys)
	indexRaw := lookup(obj, indexKeys)
	switch {
	case answerRaw != nil:
		w.Answer = strings.TrimSpace(stringValue(answerRaw))
	case indexRaw != nil:
		w.Answer = strings.TrimSpace(stringValue(indexRaw))
	}
	if err := llm.ValidateValue(schema, w); err != nil {
		return fail(err)
	}

	draft := problem.Draft{
		Stem:     w.Stem,
		Solution: w.Solution,
		Provenance: problem.Provenance{
			Raw:   raw,
			Steps: res.Steps,
		},
	}
	if len(res.Steps) > 0 {
		draft.Provenance.Repaired = res.Text
	}

	switch format {
	case problem.FormatMultipleChoice:
		draft.Choices = w.Choices
		idx, err := choiceIndex(answerRaw, indexRaw, w.Choices)
		if err != nil {
			return fail(err)
		}
		draft.Answer = problem.ChoiceAnswer(idx)
	case problem.FormatShortAnswer:
		draft.Choices = w.Choices
		// An irrational value is kept verbatim for the curriculum filter.
		if v, err := problem.NormalizeNumeric(w.Answer); err == nil {
			draft.Answer = problem.NumericAnswer(v)
		} else {
			draft.Answer = problem.NumericAnswer(w.Answer)
		}
	default:
		return fail(fmt.Errorf("unknown format %q", format))
	}
	return draft, nil
}

func choiceIndex(answerRaw, indexRaw any, choices []string) (int, error) {
	n := max(len(choices), problem.ChoiceCount)
	if answerRaw == nil && indexRaw != nil {
		return problem.NormalizeIndex(indexRaw, n)
	}
	if answerRaw == nil {
		return 0, errors.New("missing answer")
	}
	idx, err := problem.NormalizeChoice(answerRaw, n)
	if err == nil {
		return idx, nil
	}
	// The answer may be the text of the correct choice.
	if s, ok := answerRaw.(string); ok {
		if i, ok := problem.MatchChoiceText(s, choices); ok {
			return i, nil
		}
	}
	if indexRaw != nil {
		return problem.NormalizeIndex(indexRaw, n)
	}
	return 0, err
}

func decodeObject(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// unwrap descends into {"problem": {...}} style envelopes.
func unwrap(obj map[string]any) map[string]any {
	for range 3 {
		if _, ok := lookup(obj, stemKeys).(string); ok {
			return obj
		}
		var inner map[string]any
		for _, k := range wrapperKeys {
			if m, ok := obj[k].(map[string]any); ok {
				inner = m
				break
			}
		}
		if inner == nil {
			return obj
		}
		obj = inner
	}
	return obj
}

// lookup returns the first non-null value under any of keys. Keys match
// case-insensitively.
func lookup(obj map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil && !isWrapper(k, v) {
			return v
		}
	}
	for k, v := range obj {
		for _, want := range keys {
			if strings.EqualFold(k, want) && v != nil && !isWrapper(want, v) {
				return v
			}
		}
	}
	return nil
}

// isWrapper reports whether v under key is an envelope rather than a stem.
func isWrapper(key string, v any) bool {
	_, isMap := v.(map[string]any)
	return isMap && key == "problem"
}

func splitChoices(v any) []string {
	switch c := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(c))
		for _, item := range c {
			out = append(out, problem.StripChoiceMarker(choiceText(item)))
		}
		return out
	case map[string]any:
		// {"1": "...", "2": "..."} or {"A": ...}
		out := make([]string, 0, len(c))
		for i := 1; i <= len(c); i++ {
			for _, k := range []string{strconv.Itoa(i), string(rune('A' + i - 1)), string(rune('a' + i - 1))} {
				if item, ok := c[k]; ok {
					out = append(out, problem.StripChoiceMarker(choiceText(item)))
					break
				}
			}
		}
		return out
	case string:
		return splitChoiceString(c)
	default:
		return []string{stringValue(c)}
	}
}

func splitChoiceString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	locs := choiceMarkerRe.FindAllStringIndex(s, -1)
	if len(locs) >= 2 {
		out := make([]string, 0, len(locs))
		for i, loc := range locs {
			end := len(s)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			part := strings.TrimSpace(s[loc[0]:end])
			out = append(out, problem.StripChoiceMarker(part))
		}
		return out
	}
	if lines := strings.Split(s, "\n"); len(lines) > 1 {
		out := make([]string, 0, len(lines))
		for _, l := range lines {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, problem.StripChoiceMarker(l))
			}
		}
		return out
	}
	return []string{problem.StripChoiceMarker(s)}
}

func choiceText(v any) string {
	if m, ok := v.(map[string]any); ok {
		for _, k := range []string{"text", "value", "content", "label"} {
			if s, ok := m[k]; ok {
				return stringValue(s)
			}
		}
	}
	return stringValue(v)
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(s))
		for _, p := range s {
			parts = append(parts, stringValue(p))
		}
		return strings.Join(parts, "\n")
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Sprint(s)
		}
		return string(b)
	}
}

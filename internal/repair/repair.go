// Package repair turns unreliable model output into well-formed JSON and
// typed problem drafts.
//
// Repair is purely syntactic. It never rewrites the text inside strings
// beyond escaping, so the mathematical content of a stem or choice is
// carried through unchanged.
package repair

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/abhisek/suneung/internal/problem"
)

// Step names recorded in provenance, in application order.
const (
	StepStripFences    = "strip_fences"
	StepExtractObject  = "extract_object"
	StepLatexEscapes   = "latex_escapes"
	StepStripComments  = "strip_comments"
	StepSingleQuotes   = "single_quotes"
	StepTrailingCommas = "trailing_commas"
	StepQuoteKeys      = "quote_keys"
	StepInteriorQuotes = "interior_quotes"
	StepFixEscapes     = "fix_escapes"
	StepLiterals       = "literals"
	StepCloseTruncated = "close_truncated"
)

// ErrNoObject is returned when the response contains no JSON object.
var ErrNoObject = errors.New("no JSON object in response")

// Result is repaired JSON text plus the steps that changed it.
type Result struct {
	Text  string
	Steps []string
}

type heuristic struct {
	name string
	fn   func(string) string
}

// heuristics run in this order, each on the output of the previous one,
// until the text parses.
var heuristics = []heuristic{
	{StepStripComments, stripComments},
	{StepSingleQuotes, singleQuotes},
	{StepTrailingCommas, trailingCommas},
	{StepQuoteKeys, quoteKeys},
	{StepInteriorQuotes, interiorQuotes},
	{StepFixEscapes, fixEscapes},
	{StepLiterals, literals},
	{StepCloseTruncated, closeTruncated},
}

// Repair extracts the JSON object from raw and fixes common malformations.
// Output that already parses is returned as is, so Repair is idempotent.
// It returns *problem.ParseFailure when no heuristic yields valid JSON.
func Repair(raw string) (Result, error) {
	var res Result
	text := raw
	apply := func(name string, fn func(string) string) {
		if out := fn(text); out != text {
			text = out
			res.Steps = append(res.Steps, name)
		}
	}

	apply(StepStripFences, stripFences)
	apply(StepExtractObject, extractObject)
	if !strings.HasPrefix(text, "{") {
		return res, &problem.ParseFailure{Raw: raw, Steps: res.Steps, Err: ErrNoObject}
	}

	// LaTeX commands such as \frac and \theta start with valid JSON escapes
	// and would decode silently into control characters.
	apply(StepLatexEscapes, escapeLatex)

	err := check(text)
	for _, h := range heuristics {
		if err == nil {
			break
		}
		apply(h.name, h.fn)
		err = check(text)
	}
	if err != nil {
		return res, &problem.ParseFailure{Raw: raw, Steps: res.Steps, Err: err}
	}

	res.Text = text
	return res, nil
}

// check reports why text is not a single JSON object, or nil.
func check(text string) error {
	var v map[string]any
	return json.Unmarshal([]byte(text), &v)
}

var fenceRe = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n?(.*?)(?:```|$)")

func stripFences(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	if !strings.Contains(s, "```") {
		return s
	}
	// Prefer the first fenced block that holds an object.
	for _, m := range fenceRe.FindAllStringSubmatch(s, -1) {
		if strings.Contains(m[1], "{") {
			return strings.TrimSpace(m[1])
		}
	}
	return s
}

// extractObject returns the first brace-balanced object in s. A truncated
// object runs to the end of the text.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return strings.TrimSpace(s)
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return strings.TrimSpace(s[start:])
}

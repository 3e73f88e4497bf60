package problem

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// circled holds the circled digit markers used for CSAT choices.
var circled = []rune{'①', '②', '③', '④', '⑤', '⑥', '⑦', '⑧', '⑨'}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"1st": 1, "2nd": 2, "3rd": 3, "4th": 4, "5th": 5,
	"첫째": 1, "둘째": 2, "셋째": 3, "넷째": 4, "다섯째": 5,
	"첫번째": 1, "두번째": 2, "세번째": 3, "네번째": 4, "다섯번째": 5,
}

var (
	// "(3)", "3)", "3.", "3번", "(C)", "C)", "C."
	wrappedMarkerRe = regexp.MustCompile(`^\(?([1-9]|[A-Ia-i])\)?[.번]?$`)

	// leading choice markers: "① ", "(1) ", "1) ", "1. ", "A) ", "(A) "
	leadingMarkerRe = regexp.MustCompile(`^(?:[①-⑨]\s*|\(([1-9]|[A-Ia-i])\)\s*|([1-9]|[A-Ia-i])[).]\s+)`)

	decimalRe  = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?$`)
	fractionRe = regexp.MustCompile(`^[+-]?\d+/[+-]?\d+$`)
	latexFrac  = regexp.MustCompile(`^([+-]?)\\d?frac\{([^{}]+)\}\{([^{}]+)\}$`)
)

// NormalizeChoice maps a 1-based answer representation to the zero-based
// choice index. Accepted forms: integers 1..n, digit strings, circled
// digits (①), "(3)", "3)", "3번", letters A–E, and ordinal words
// ("third", "셋째", "세 번째"). The mapping is a pure function of its input.
func NormalizeChoice(raw any, n int) (int, error) {
	switch v := raw.(type) {
	case int:
		return oneBased(v, n)
	case int64:
		return oneBased(int(v), n)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("choice answer %v is not an integer", v)
		}
		return oneBased(int(v), n)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("choice answer %q is not an integer", v.String())
		}
		return oneBased(int(i), n)
	case string:
		return choiceFromString(v, n)
	default:
		return 0, fmt.Errorf("unsupported choice answer type %T", raw)
	}
}

// NormalizeIndex validates a zero-based choice index.
func NormalizeIndex(raw any, n int) (int, error) {
	var i int
	switch v := raw.(type) {
	case int:
		i = v
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("answer index %v is not an integer", v)
		}
		i = int(v)
	case json.Number:
		n64, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("answer index %q is not an integer", v.String())
		}
		i = int(n64)
	case string:
		n64, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("answer index %q is not an integer", v)
		}
		i = n64
	default:
		return 0, fmt.Errorf("unsupported answer index type %T", raw)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("answer index %d out of range [0,%d)", i, n)
	}
	return i, nil
}

func oneBased(i, n int) (int, error) {
	if i < 1 || i > n {
		return 0, fmt.Errorf("choice number %d out of range [1,%d]", i, n)
	}
	return i - 1, nil
}

func choiceFromString(s string, n int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty choice answer")
	}

	if r, size := utf8.DecodeRuneInString(s); size == len(s) {
		for i, c := range circled {
			if r == c {
				return oneBased(i+1, n)
			}
		}
	}

	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if i, ok := ordinalWords[key]; ok {
		return oneBased(i, n)
	}

	if m := wrappedMarkerRe.FindStringSubmatch(s); m != nil {
		c := m[1][0]
		switch {
		case c >= '1' && c <= '9':
			return oneBased(int(c-'0'), n)
		case c >= 'A' && c <= 'I':
			return oneBased(int(c-'A')+1, n)
		case c >= 'a' && c <= 'i':
			return oneBased(int(c-'a')+1, n)
		}
	}

	return 0, fmt.Errorf("unrecognized choice answer %q", s)
}

// NormalizeNumeric returns the canonical literal of a finite rational
// answer: integers without leading zeros ("007" → "7"), everything else as
// a reduced fraction ("2.50" → "5/2", "6/4" → "3/2").
func NormalizeNumeric(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "$")
	s = strings.ReplaceAll(s, "−", "-")
	s = strings.Join(strings.Fields(s), "")
	if m := latexFrac.FindStringSubmatch(s); m != nil {
		s = m[1] + m[2] + "/" + m[3]
	}

	if !decimalRe.MatchString(s) && !fractionRe.MatchString(s) {
		return "", fmt.Errorf("answer %q is not a finite rational number", raw)
	}

	r, err := parseRat(s)
	if err != nil {
		return "", fmt.Errorf("answer %q: %w", raw, err)
	}
	if r.IsInt() {
		return r.Num().String(), nil
	}
	return r.RatString(), nil
}

// parseRat parses "a/b" or a plain decimal in base 10. Leading zeros are
// decimal, never octal.
func parseRat(s string) (*big.Rat, error) {
	var num, den *big.Int
	if a, b, ok := strings.Cut(s, "/"); ok {
		var okA, okB bool
		num, okA = new(big.Int).SetString(a, 10)
		den, okB = new(big.Int).SetString(b, 10)
		if !okA || !okB {
			return nil, fmt.Errorf("malformed fraction")
		}
	} else {
		intPart, frac, _ := strings.Cut(s, ".")
		var ok bool
		num, ok = new(big.Int).SetString(intPart+frac, 10)
		if !ok {
			return nil, fmt.Errorf("malformed number")
		}
		den = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(frac))), nil)
	}
	if den.Sign() == 0 {
		return nil, fmt.Errorf("zero denominator")
	}
	return new(big.Rat).SetFrac(num, den), nil
}

// StripChoiceMarker removes a leading "①", "(1)", "1)", "1." or "A)" marker.
func StripChoiceMarker(s string) string {
	s = strings.TrimSpace(s)
	if loc := leadingMarkerRe.FindStringIndex(s); loc != nil && loc[1] < len(s) {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// NormalizeExpr canonicalizes an expression for text comparison: markers
// and whitespace removed, × → *, ÷ → /, lowercase.
func NormalizeExpr(s string) string {
	s = StripChoiceMarker(s)
	s = strings.Trim(s, "$")
	s = strings.NewReplacer("×", "*", "÷", "/", "−", "-", "·", "*").Replace(s)
	s = strings.Join(strings.Fields(s), "")
	return strings.ToLower(s)
}

// MatchChoiceText finds the choice whose content equals value, comparing
// normalized expressions first and rational values second. It reports false
// unless exactly one choice matches.
func MatchChoiceText(value string, choices []string) (int, bool) {
	want := NormalizeExpr(value)
	if want == "" {
		return 0, false
	}
	if i, ok := uniqueMatch(choices, func(c string) bool { return NormalizeExpr(c) == want }); ok {
		return i, true
	}

	wantNum, err := NormalizeNumeric(value)
	if err != nil {
		return 0, false
	}
	return uniqueMatch(choices, func(c string) bool {
		n, err := NormalizeNumeric(StripChoiceMarker(c))
		return err == nil && n == wantNum
	})
}

func uniqueMatch(choices []string, eq func(string) bool) (int, bool) {
	found := -1
	for i, c := range choices {
		if eq(c) {
			if found >= 0 {
				return 0, false
			}
			found = i
		}
	}
	return found, found >= 0
}

// Marker returns the circled marker of choice i, or "(i+1)" past ⑨.
func Marker(i int) string {
	if i >= 0 && i < len(circled) {
		return string(circled[i])
	}
	return fmt.Sprintf("(%d)", i+1)
}

// Display renders the answer the way an answer key shows it: the marker
// and text of the chosen option, or the numeric value.
func (a Answer) Display(choices []string) string {
	if a.Index == nil {
		return a.Value
	}
	i := *a.Index
	if i >= 0 && i < len(choices) {
		return Marker(i) + " " + choices[i]
	}
	return Marker(i)
}

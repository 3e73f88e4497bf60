// Package curriculum enforces subject-scope rules on problem drafts and
// runs the deterministic answer checks that need no external service.
package curriculum

import (
	"regexp"
	"slices"

	"github.com/abhisek/suneung/internal/problem"
)

// Family is a class of operators whose use is restricted to some tracks.
type Family string

const (
	FamilyNaturalExp Family = "natural_exp" // e^x, exp
	FamilyNaturalLog Family = "natural_log" // ln
)

// Label returns the Korean name used in critiques.
func (f Family) Label() string {
	switch f {
	case FamilyNaturalExp:
		return "자연지수함수 e^x"
	case FamilyNaturalLog:
		return "자연로그 ln x"
	default:
		return string(f)
	}
}

// Rule restricts an operator family to a set of tracks.
type Rule struct {
	Family   Family
	Patterns []*regexp.Regexp
	Allowed  []problem.Track
}

// Permits reports whether the rule allows its family under track.
func (r Rule) Permits(track problem.Track) bool {
	return slices.Contains(r.Allowed, track)
}

// Substitution rewrites an exact identity of a restricted family into an
// expression free of it. Only value-preserving rewrites belong here.
type Substitution struct {
	Name    string
	Family  Family
	Pattern *regexp.Regexp
	Replace string
}

// RuleSet is the complete scope configuration of a Filter.
type RuleSet struct {
	Rules         []Rule
	Substitutions []Substitution

	// ShortAnswerMax bounds short-answer values; zero disables the bound.
	ShortAnswerMax int

	// IntegerShortAnswers requires short-answer values to be integers.
	IntegerShortAnswers bool
}

// A restricted token must not be glued to a preceding letter, so "type^2"
// or "belong" never match.
const pre = `(?:^|[^A-Za-z])`

var (
	expPatterns = []*regexp.Regexp{
		regexp.MustCompile(pre + `e\s*\^`),
		regexp.MustCompile(pre + `\\?exp\s*[({\\ ]`),
		regexp.MustCompile(`\\mathrm\{e\}`),
		regexp.MustCompile(`자연지수`),
	}
	logPatterns = []*regexp.Regexp{
		regexp.MustCompile(pre + `\\?ln(?:[^A-Za-z]|$)`),
		regexp.MustCompile(`log_\{?e\}?(?:[^A-Za-z]|$)`),
		regexp.MustCompile(`자연로그`),
	}
)

// DefaultRules returns the CSAT scope: natural exponentials and natural
// logarithms belong to calculus (미적분) only. Short answers are natural
// numbers up to 999.
func DefaultRules() RuleSet {
	return RuleSet{
		Rules: []Rule{
			{Family: FamilyNaturalExp, Patterns: expPatterns, Allowed: []problem.Track{problem.TrackCalculus}},
			{Family: FamilyNaturalLog, Patterns: logPatterns, Allowed: []problem.Track{problem.TrackCalculus}},
		},
		Substitutions:       defaultSubstitutions(),
		ShortAnswerMax:      999,
		IntegerShortAnswers: true,
	}
}

// defaultSubstitutions are exact identities, applied in order. Composite
// forms come first so e^{ln x} is not half-rewritten by the ln rules. A
// match must not follow a digit or closing bracket: "3e^0" is 3·1, and
// rewriting it to "31" would change the value.
func defaultSubstitutions() []Substitution {
	const v = `([a-z0-9])`
	return []Substitution{
		{
			Name:    "e^{ln x} = x",
			Family:  FamilyNaturalExp,
			Pattern: regexp.MustCompile(`(^|[^A-Za-z0-9)}\\])e\s*\^\s*(?:\{\s*\\?ln\s*\(?\s*` + v + `\s*\)?\s*\}|\(\s*\\?ln\s*\(?\s*` + v + `\s*\)?\s*\))`),
			Replace: "${1}${2}${3}",
		},
		{
			Name:    "ln(e^x) = x",
			Family:  FamilyNaturalLog,
			Pattern: regexp.MustCompile(`(^|[^A-Za-z0-9)}\\])\\?ln\s*(?:\(\s*e\s*\^\s*\{?` + v + `\}?\s*\)|e\s*\^\s*\{` + v + `\})`),
			Replace: "${1}${2}${3}",
		},
		{
			Name:    "ln 1 = 0",
			Family:  FamilyNaturalLog,
			Pattern: regexp.MustCompile(`(^|[^A-Za-z0-9)}\\])\\?ln\s*(?:\(\s*1\s*\)|1([^0-9.]|$))`),
			Replace: "${1}0${2}",
		},
		{
			Name:    "ln e = 1",
			Family:  FamilyNaturalLog,
			Pattern: regexp.MustCompile(`(^|[^A-Za-z0-9)}\\])\\?ln\s*(?:\(\s*e\s*\)|e([^A-Za-z0-9^_{(]|$))`),
			Replace: "${1}1${2}",
		},
		{
			Name:    "e^0 = 1",
			Family:  FamilyNaturalExp,
			Pattern: regexp.MustCompile(`(^|[^A-Za-z0-9)}\\])e\s*\^\s*(?:\{\s*0\s*\}|0([^0-9.]|$))`),
			Replace: "${1}1${2}",
		},
	}
}

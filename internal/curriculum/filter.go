package curriculum

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/suneung/internal/problem"
)

// Result is the outcome of filtering one draft.
type Result struct {
	// Draft is the input draft with safe substitutions applied.
	Draft problem.Draft

	// Corrections names the substitutions that were applied.
	Corrections []string

	// Violations are scope breaches that could not be corrected.
	Violations []problem.Issue

	// Invalid lists deterministic consistency failures.
	Invalid []problem.Issue
}

// Approved reports whether the draft may proceed to scoring.
func (r Result) Approved() bool {
	return len(r.Violations) == 0 && len(r.Invalid) == 0
}

// Critique synthesizes the local critique for a rejected draft.
func (r Result) Critique() problem.ReviewCritique {
	issues := slices.Concat(r.Violations, r.Invalid)
	return problem.ReviewCritique{
		Pass:        false,
		Score:       1,
		Issues:      issues,
		Suggestions: suggestion(issues),
		Synthesized: true,
	}
}

func suggestion(issues []problem.Issue) string {
	var parts []string
	for _, is := range issues {
		switch is.Kind {
		case problem.IssueCurriculum:
			parts = append(parts, "교육과정 범위를 벗어난 연산을 해당 과목에서 허용되는 표현으로 바꾸시오")
		case problem.IssueValidation:
			parts = append(parts, "선택지와 정답 형식을 수능 형식에 맞게 고치시오")
		}
	}
	return strings.Join(slices.Compact(parts), ". ")
}

// Filter applies a RuleSet. It holds no mutable state and is safe for
// concurrent use.
type Filter struct {
	rules RuleSet
}

// NewFilter creates a filter for rules.
func NewFilter(rules RuleSet) *Filter {
	return &Filter{rules: rules}
}

// maxSubstitutionPasses bounds repeated rewriting of adjacent identities.
const maxSubstitutionPasses = 3

// Filter checks d against the scope rules for req.Track. Restricted
// operators are first rewritten through exact identities; whatever remains
// is reported as a violation. The deterministic format checks run on the
// corrected draft.
func (f *Filter) Filter(d problem.Draft, req problem.Request) Result {
	res := Result{Draft: d}
	res.Draft.Choices = slices.Clone(d.Choices)

	var restricted []Family
	for _, rule := range f.rules.Rules {
		if !rule.Permits(req.Track) && f.uses(res.Draft, rule) {
			restricted = append(restricted, rule.Family)
		}
	}
	if len(restricted) > 0 {
		res.Corrections = f.substitute(&res.Draft, restricted)
	}

	for _, rule := range f.rules.Rules {
		if rule.Permits(req.Track) {
			continue
		}
		if where := f.locate(res.Draft, rule); len(where) > 0 {
			res.Violations = append(res.Violations, problem.Issue{
				Kind: problem.IssueCurriculum,
				Detail: fmt.Sprintf("%s은(는) %s 과목에서 사용할 수 없음 (%s)",
					rule.Family.Label(), req.Track.Label(), strings.Join(where, ", ")),
			})
		}
	}

	res.Invalid = f.validate(res.Draft, req)
	return res
}

func (f *Filter) uses(d problem.Draft, rule Rule) bool {
	return len(f.locate(d, rule)) > 0
}

// locate names the fields of d in which rule's family occurs.
func (f *Filter) locate(d problem.Draft, rule Rule) []string {
	var where []string
	check := func(name, text string) {
		for _, p := range rule.Patterns {
			if p.MatchString(text) {
				where = append(where, name)
				return
			}
		}
	}
	check("stem", d.Stem)
	for i, c := range d.Choices {
		check(fmt.Sprintf("choice %d", i+1), c)
	}
	check("solution", d.Solution)
	return where
}

// substitute rewrites every field of d with the substitutions of the given
// families and returns the names of those that matched.
func (f *Filter) substitute(d *problem.Draft, families []Family) []string {
	var applied []string
	rewrite := func(text string) string {
		for range maxSubstitutionPasses {
			before := text
			for _, s := range f.rules.Substitutions {
				if !slices.Contains(families, s.Family) || !s.Pattern.MatchString(text) {
					continue
				}
				text = s.Pattern.ReplaceAllString(text, s.Replace)
				if !slices.Contains(applied, s.Name) {
					applied = append(applied, s.Name)
				}
			}
			if text == before {
				break
			}
		}
		return text
	}
	d.Stem = rewrite(d.Stem)
	for i := range d.Choices {
		d.Choices[i] = rewrite(d.Choices[i])
	}
	d.Solution = rewrite(d.Solution)
	return applied
}

// validate runs the format and answer consistency checks.
func (f *Filter) validate(d problem.Draft, req problem.Request) []problem.Issue {
	var issues []problem.Issue
	add := func(format string, args ...any) {
		issues = append(issues, problem.Issue{Kind: problem.IssueValidation, Detail: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(d.Stem) == "" {
		add("문제 본문이 비어 있음")
	}

	switch req.Format {
	case problem.FormatMultipleChoice:
		if len(d.Choices) != problem.ChoiceCount {
			add("선택지는 %d개여야 함 (현재 %d개)", problem.ChoiceCount, len(d.Choices))
		}
		seen := make(map[string]int, len(d.Choices))
		for i, c := range d.Choices {
			key := problem.NormalizeExpr(c)
			if key == "" {
				add("선택지 %d이(가) 비어 있음", i+1)
				continue
			}
			if j, dup := seen[key]; dup {
				add("선택지 %d와 %d가 같음", j+1, i+1)
				continue
			}
			seen[key] = i
		}
		switch {
		case d.Answer.Index == nil:
			add("정답 번호가 없음")
		case *d.Answer.Index < 0 || *d.Answer.Index >= len(d.Choices):
			add("정답 번호 %d이(가) 선택지 범위를 벗어남", *d.Answer.Index+1)
		}

	case problem.FormatShortAnswer:
		if len(d.Choices) > 0 {
			add("단답형 문제에 선택지가 있음")
		}
		f.validateShortAnswer(d.Answer.Value, add)
	}
	return issues
}

func (f *Filter) validateShortAnswer(value string, add func(string, ...any)) {
	canon, err := problem.NormalizeNumeric(value)
	if err != nil {
		add("단답형 정답 %q이(가) 유한한 유리수가 아님", value)
		return
	}
	if canon != value {
		add("단답형 정답 %q이(가) 정규형 %q이(가) 아님", value, canon)
	}
	if !f.rules.IntegerShortAnswers && f.rules.ShortAnswerMax == 0 {
		return
	}
	n, isInt := integerValue(canon)
	if f.rules.IntegerShortAnswers && !isInt {
		add("단답형 정답은 자연수여야 함 (현재 %s)", canon)
		return
	}
	if isInt && f.rules.ShortAnswerMax > 0 && (n < 1 || n > f.rules.ShortAnswerMax) {
		add("단답형 정답은 1 이상 %d 이하여야 함 (현재 %d)", f.rules.ShortAnswerMax, n)
	}
}

// integerValue parses a canonical integer literal. Literals too large for
// int are reported as math.MaxInt.
func integerValue(canon string) (int, bool) {
	if strings.Contains(canon, "/") {
		return 0, false
	}
	n, err := strconv.Atoi(canon)
	if err != nil {
		return math.MaxInt, true
	}
	return n, true
}

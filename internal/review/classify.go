package review

import (
	"strings"

	"github.com/abhisek/suneung/internal/problem"
)

// issueTags are the prefixes the reviewer is asked to use.
var issueTags = []struct {
	tag  string
	kind problem.IssueKind
}{
	{"[교육과정]", problem.IssueCurriculum},
	{"[수학 오류]", problem.IssueMath},
	{"[수학오류]", problem.IssueMath},
	{"[난이도]", problem.IssueDifficulty},
	{"[기타]", problem.IssueOther},
}

// issueKeywords classify untagged issues. Earlier entries win.
var issueKeywords = []struct {
	kind     problem.IssueKind
	keywords []string
}{
	{problem.IssueCurriculum, []string{"교육과정", "출제 범위", "범위를 벗어", "과목에서", "curriculum"}},
	{problem.IssueMath, []string{
		"오류", "틀렸", "틀린", "잘못", "모순", "계산 실수", "정답이 아니", "정답 불일치",
		"유일하지", "복수 정답", "정답이 없", "해가 없", "error", "incorrect",
	}},
	{problem.IssueDifficulty, []string{"난이도", "너무 쉽", "너무 어렵", "difficulty", "too easy"}},
}

// selfNegating keywords already describe a defect and are never cancelled
// by a negation next to them.
var selfNegating = map[string]bool{
	"범위를 벗어": true, "정답이 아니": true, "유일하지": true, "정답이 없": true, "해가 없": true,
}

var (
	// Korean negation follows the noun: "오류 없음", "오류는 발견되지 않음".
	negationAfter = []string{"없", "않", "아니"}
	// English negation precedes it: "no error", "did not find any error".
	negationBefore = []string{"no ", "not ", "without ", "free of ", "n't "}
)

const negationWindow = 16 // runes

// classifyIssue maps a reviewer issue string to a typed issue. Untagged
// notes from a passing review never block; a keyword that is negated in
// its own clause ("수학적 오류 없음") does not count.
func classifyIssue(s string, passed bool) problem.Issue {
	s = strings.TrimSpace(s)
	for _, t := range issueTags {
		if rest, ok := strings.CutPrefix(s, t.tag); ok {
			return problem.Issue{Kind: t.kind, Detail: strings.TrimSpace(rest)}
		}
	}
	other := problem.Issue{Kind: problem.IssueOther, Detail: s}
	if passed {
		return other
	}

	lower := strings.ToLower(s)
	for _, k := range issueKeywords {
		for _, kw := range k.keywords {
			if mentions(lower, kw) {
				return problem.Issue{Kind: k.kind, Detail: s}
			}
		}
	}
	return other
}

// mentions reports whether s contains kw at least once without a negation.
func mentions(s, kw string) bool {
	for off := 0; ; {
		i := strings.Index(s[off:], kw)
		if i < 0 {
			return false
		}
		i += off
		if selfNegating[kw] || !negated(s, i, len(kw)) {
			return true
		}
		off = i + len(kw)
	}
}

// negated reports whether the keyword at s[i:i+n] is negated within its
// clause.
func negated(s string, i, n int) bool {
	after := clause([]rune(s[i+n:]), false)
	before := clause([]rune(s[:i]), true)
	// "오류가 있어 답이 없음": an affirmation first keeps the keyword.
	affirmed := strings.Index(after, "있")
	for _, neg := range negationAfter {
		if j := strings.Index(after, neg); j >= 0 && (affirmed < 0 || j < affirmed) {
			return true
		}
	}
	for _, neg := range negationBefore {
		if strings.Contains(before, neg) {
			return true
		}
	}
	return false
}

// clause returns up to negationWindow runes next to a keyword, stopping at
// the first clause boundary. reverse takes the runes ending at the keyword.
func clause(r []rune, reverse bool) string {
	if reverse {
		start := max(len(r)-negationWindow, 0)
		for j := len(r) - 1; j >= start; j-- {
			if strings.ContainsRune(".,;!?\n", r[j]) {
				return string(r[j+1:])
			}
		}
		return string(r[start:])
	}
	end := min(len(r), negationWindow)
	for j := 0; j < end; j++ {
		if strings.ContainsRune(".,;!?\n", r[j]) {
			return string(r[:j])
		}
	}
	return string(r[:end])
}

package difficulty

import (
	"regexp"
	"strings"

	"github.com/abhisek/suneung/internal/problem"
)

type unit struct {
	name     string
	keywords []string
}

// units are the curriculum units detected for fusion counting, in the
// order they are reported.
var units = []unit{
	{"미분", []string{"미분", "도함수", "f'", "d/dx", "접선", "극값"}},
	{"적분", []string{"적분", "∫", `\int`, "넓이", "부피"}},
	{"지수로그", []string{"e^", `\ln`, "log", "지수", "로그"}},
	{"수열", []string{"수열", "a_n", "a_{n", "점화식", "급수", `\sum`}},
	{"극한", []string{"lim", "극한", "→∞", `\infty`, "수렴", "발산"}},
	{"삼각함수", []string{"sin", "cos", "tan", "삼각", "주기"}},
	{"확률통계", []string{"확률", "경우의 수", "기댓값", "분산", "정규분포"}},
	{"기하", []string{"벡터", "포물선", "타원", "쌍곡선", `\vec`}},
}

var techniqueKeywords = []struct {
	technique Technique
	keywords  []string
}{
	{TechniqueTaylor, []string{"테일러", "매클로린", "Taylor", "Maclaurin"}},
	{TechniqueLagrange, []string{"라그랑주", "Lagrange"}},
	{TechniqueCauchy, []string{"코시", "Cauchy"}},
}

var (
	// An identity the solver has to exploit: a condition holding for all x.
	identityConditionRe = regexp.MustCompile(`(모든 실수|임의의)[^.。]*(성립|만족)`)
	identityDerivation  = []string{"항등식", "계수비교", "계수를 비교", "양변의 계수", "identity"}

	// Restrictions that only fix the domain do not count as inequality use.
	provisoRe         = regexp.MustCompile(`\(\s*단\s*[,，][^)]*\)`)
	domainPhrases     = []string{"정의역", "에서 정의된", "에서 정의되고"}
	inequalityMarkers = []string{"≤", "≥", "<", ">", "부등식"}
	latexInequalityRe = regexp.MustCompile(`\\(?:le|ge|leq|geq|lt|gt|leqslant|geqslant)(?:[^A-Za-z]|$)`)
)

// Extract derives scoring signals from the draft text and request.
func Extract(d problem.Draft, req problem.Request) Signals {
	text := d.Stem + "\n" + strings.Join(d.Choices, "\n") + "\n" + d.Solution

	s := Signals{
		UltraHard:  req.UltraHard(),
		Tier:       req.Tier,
		Identity:   identityUsed(d.Stem, d.Solution),
		Inequality: inequalityUsed(d.Stem),
	}
	for _, u := range units {
		if containsAny(text, u.keywords) {
			s.Units = append(s.Units, u.name)
		}
	}
	for _, tk := range techniqueKeywords {
		if containsAny(text, tk.keywords) {
			s.Techniques = append(s.Techniques, tk.technique)
		}
	}
	return s
}

func identityUsed(stem, solution string) bool {
	return identityConditionRe.MatchString(stem) || containsAny(solution, identityDerivation)
}

// inequalityUsed reports an inequality constraint in the stem outside
// provisos ("(단, x > 0)") and domain statements.
func inequalityUsed(stem string) bool {
	stem = provisoRe.ReplaceAllString(stem, "")
	for _, sentence := range splitSentences(stem) {
		if containsAny(sentence, domainPhrases) {
			continue
		}
		if containsAny(sentence, inequalityMarkers) || latexInequalityRe.MatchString(sentence) {
			return true
		}
	}
	return false
}

func splitSentences(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '.' || r == '?' || r == '。'
	})
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

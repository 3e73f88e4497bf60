// Package difficulty scores problem drafts on the CSAT difficulty scale.
//
// Scoring is additive over discrete signals. Score is a pure function of
// Signals; Extract is a pure function of the draft and request.
package difficulty

import (
	"fmt"

	"github.com/abhisek/suneung/internal/problem"
)

// Base scores.
const (
	UltraHardBase = 80
	HighBase      = 70
	MidBase       = 55
	LowBase       = 40
)

// Bonus points.
const (
	FusionBonus     = 5 // per unit beyond the first
	IdentityBonus   = 10
	InequalityBonus = 8
)

// Grade thresholds.
const (
	KillerScore     = 100
	SemiKillerScore = 90
	HighestScore    = 80
)

// Technique is an advanced solution technique that earns a fixed bonus.
type Technique string

const (
	TechniqueTaylor   Technique = "taylor"
	TechniqueLagrange Technique = "lagrange"
	TechniqueCauchy   Technique = "cauchy"
)

// techniqueBonus is the fixed bonus per technique.
var techniqueBonus = map[Technique]int{
	TechniqueTaylor:   12,
	TechniqueLagrange: 10,
	TechniqueCauchy:   10,
}

// Label returns the Korean name of the technique.
func (t Technique) Label() string {
	switch t {
	case TechniqueTaylor:
		return "테일러 전개"
	case TechniqueLagrange:
		return "라그랑주"
	case TechniqueCauchy:
		return "코시-슈바르츠"
	default:
		return string(t)
	}
}

// Signals are the discrete inputs of the scorer.
type Signals struct {
	UltraHard  bool
	Tier       problem.Tier
	Units      []string // distinct curriculum units, in detection order
	Identity   bool
	Inequality bool
	Techniques []Technique
}

// Score computes the analysis for s. It never clamps the score.
func Score(s Signals) problem.DifficultyAnalysis {
	a := problem.DifficultyAnalysis{
		Base:  base(s),
		Units: append([]string(nil), s.Units...),
	}

	if extra := len(s.Units) - 1; extra > 0 {
		a.Bonuses = append(a.Bonuses, problem.Bonus{
			Reason: fmt.Sprintf("융합 단원 %d개", len(s.Units)),
			Points: extra * FusionBonus,
		})
	}
	if s.Identity {
		a.Bonuses = append(a.Bonuses, problem.Bonus{Reason: "항등식 활용", Points: IdentityBonus})
	}
	if s.Inequality {
		a.Bonuses = append(a.Bonuses, problem.Bonus{Reason: "부등식 조건", Points: InequalityBonus})
	}
	seen := make(map[Technique]bool)
	for _, t := range s.Techniques {
		pts, ok := techniqueBonus[t]
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		a.Bonuses = append(a.Bonuses, problem.Bonus{Reason: t.Label(), Points: pts})
	}

	a.Score = a.Base
	for _, b := range a.Bonuses {
		a.Score += b.Points
	}
	a.Grade = GradeFor(a.Score, s.Tier)
	a.ExpectedMinutes = ExpectedMinutes(a.Grade)
	return a
}

func base(s Signals) int {
	if s.UltraHard {
		return UltraHardBase
	}
	switch s.Tier {
	case problem.TierHigh:
		return HighBase
	case problem.TierMid:
		return MidBase
	default:
		return LowBase
	}
}

// GradeFor maps a score to its grade. Scores below the highest threshold
// take the tier's own grade.
func GradeFor(score int, tier problem.Tier) problem.Grade {
	switch {
	case score >= KillerScore:
		return problem.GradeKiller
	case score >= SemiKillerScore:
		return problem.GradeSemiKiller
	case score >= HighestScore:
		return problem.GradeHighest
	}
	switch tier {
	case problem.TierHigh:
		return problem.GradeHigh
	case problem.TierMid:
		return problem.GradeMid
	default:
		return problem.GradeLow
	}
}

// ExpectedMinutes is the solving time estimate for a grade.
func ExpectedMinutes(g problem.Grade) int {
	switch g {
	case problem.GradeKiller:
		return 25
	case problem.GradeSemiKiller:
		return 20
	case problem.GradeHighest:
		return 15
	case problem.GradeHigh:
		return 10
	case problem.GradeMid:
		return 6
	default:
		return 3
	}
}

// Analyze extracts signals from d and scores them.
func Analyze(d problem.Draft, req problem.Request) problem.DifficultyAnalysis {
	return Score(Extract(d, req))
}

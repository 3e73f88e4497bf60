package problemgen

import (
	"math/rand/v2"

	"github.com/abhisek/suneung/internal/problem"
)

// CSAT layout limits.
const (
	DefaultExamSize   = 30
	MaxMultipleChoice = 21
	MaxShortAnswer    = 9
	maxKillers        = 2
)

// Topics lists the units of each track used when planning an exam set.
var Topics = map[problem.Track][]string{
	problem.TrackMath1:       {"지수함수와 로그함수", "삼각함수", "수열"},
	problem.TrackMath2:       {"함수의 극한과 연속", "미분", "적분"},
	problem.TrackCalculus:    {"수열의 극한", "미분법", "적분법"},
	problem.TrackProbability: {"경우의 수", "확률", "통계"},
	problem.TrackGeometry:    {"이차곡선", "평면벡터", "공간도형과 공간좌표"},
}

// examTracks are the tracks an exam set draws from: the two common
// subjects and the calculus elective.
var examTracks = []problem.Track{problem.TrackMath1, problem.TrackMath2, problem.TrackCalculus}

var killerCategories = []problem.Category{
	problem.CategoryFusion,
	problem.CategoryIdentity,
	problem.CategoryInequality,
	problem.CategoryLimit,
}

// PlanExam lays out an exam set of n problems in numbered order.
//
// 70% of the set is multiple choice (at most 21) and the rest short answer
// (at most 9), so n above 30 is capped. With includeKiller the last one or
// two multiple-choice items become 4-point ultra-hard problems, never more
// than 10% of the set.
func PlanExam(n int, includeKiller bool, rng *rand.Rand) []problem.Request {
	mc := min(n*7/10, MaxMultipleChoice)
	sa := min(n-mc, MaxShortAnswer)

	killers := 0
	if includeKiller {
		killers = min(maxKillers, n/10)
	}

	reqs := make([]problem.Request, 0, mc+sa)
	for i := range mc {
		req := randomRequest(rng, problem.FormatMultipleChoice, []int{2, 3, 4})
		if i >= mc-killers {
			req.Tier = problem.TierHigh
			req.Points = 4
			req.Category = killerCategories[rng.IntN(len(killerCategories))]
			req.FusionLevel = 2 + rng.IntN(3)
		}
		reqs = append(reqs, req)
	}
	for range sa {
		reqs = append(reqs, randomRequest(rng, problem.FormatShortAnswer, []int{3, 4}))
	}
	return reqs
}

func randomRequest(rng *rand.Rand, format problem.Format, points []int) problem.Request {
	track := examTracks[rng.IntN(len(examTracks))]
	topics := Topics[track]
	tiers := []problem.Tier{problem.TierLow, problem.TierMid, problem.TierHigh}
	return problem.Request{
		Track:  track,
		Topic:  topics[rng.IntN(len(topics))],
		Tier:   tiers[rng.IntN(len(tiers))],
		Format: format,
		Points: points[rng.IntN(len(points))],
	}
}

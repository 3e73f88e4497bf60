package problemgen

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/suneung/internal/problem"
)

func countFormat(reqs []problem.Request, f problem.Format) int {
	n := 0
	for _, r := range reqs {
		if r.Format == f {
			n++
		}
	}
	return n
}

func TestPlanExam_DefaultLayout(t *testing.T) {
	reqs := PlanExam(DefaultExamSize, true, rand.New(rand.NewPCG(1, 2)))

	require.Len(t, reqs, 30)
	assert.Equal(t, 21, countFormat(reqs, problem.FormatMultipleChoice))
	assert.Equal(t, 9, countFormat(reqs, problem.FormatShortAnswer))

	// Killers are the last two multiple-choice items.
	for i, r := range reqs {
		killer := i == 19 || i == 20
		assert.Equal(t, killer, r.UltraHard(), "item %d", i+1)
		if killer {
			assert.Equal(t, 4, r.Points)
			assert.Equal(t, problem.FormatMultipleChoice, r.Format)
			assert.GreaterOrEqual(t, r.FusionLevel, 2)
			assert.LessOrEqual(t, r.FusionLevel, 4)
		}
		assert.NoError(t, r.Validate(), "item %d: %s", i+1, r)
	}
}

func TestPlanExam_KillerShare(t *testing.T) {
	tests := []struct {
		n       int
		killers int
	}{
		{5, 0},
		{10, 1},
		{19, 1},
		{20, 2},
		{30, 2},
	}
	for _, tt := range tests {
		reqs := PlanExam(tt.n, true, rand.New(rand.NewPCG(7, 7)))
		got := 0
		for _, r := range reqs {
			if r.UltraHard() {
				got++
			}
		}
		if got != tt.killers {
			t.Errorf("PlanExam(%d) killers = %d, want %d", tt.n, got, tt.killers)
		}
	}
}

func TestPlanExam_Caps(t *testing.T) {
	reqs := PlanExam(50, false, rand.New(rand.NewPCG(3, 4)))
	assert.Equal(t, MaxMultipleChoice, countFormat(reqs, problem.FormatMultipleChoice))
	assert.Equal(t, MaxShortAnswer, countFormat(reqs, problem.FormatShortAnswer))
}

func TestPlanExam_Deterministic(t *testing.T) {
	a := PlanExam(30, true, rand.New(rand.NewPCG(9, 9)))
	b := PlanExam(30, true, rand.New(rand.NewPCG(9, 9)))
	assert.Equal(t, a, b)
}

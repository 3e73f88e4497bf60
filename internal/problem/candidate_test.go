package problem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() Request {
	return Request{
		Track:  TrackCalculus,
		Topic:  "정적분의 활용",
		Tier:   TierHigh,
		Format: FormatMultipleChoice,
		Points: 4,
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusRequested, StatusGenerated, true},
		{StatusRequested, StatusFiltered, false},
		{StatusGenerated, StatusFiltered, true},
		{StatusFiltered, StatusScored, true},
		{StatusFiltered, StatusNeedsRevision, true},
		{StatusScored, StatusReviewed, true},
		{StatusScored, StatusRequested, true},
		{StatusReviewed, StatusAccepted, true},
		{StatusReviewed, StatusNeedsRevision, true},
		{StatusNeedsRevision, StatusRevised, true},
		{StatusNeedsRevision, StatusRejected, true},
		{StatusRevised, StatusFiltered, true},
		{StatusRevised, StatusAccepted, false},
		{StatusScored, StatusFailed, true},
		{StatusAccepted, StatusFailed, false},
		{StatusRejected, StatusRevised, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCandidate_AcceptRequiresCurriculumApproval(t *testing.T) {
	c := NewCandidate("c1", testRequest())
	for _, s := range []Status{StatusGenerated, StatusFiltered, StatusScored, StatusReviewed} {
		require.NoError(t, c.Transition(s))
	}

	err := c.Transition(StatusAccepted)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StatusReviewed, c.Status)

	c.CurriculumApproved = true
	require.NoError(t, c.Transition(StatusAccepted))
	assert.True(t, c.Status.Terminal())
}

func TestCandidate_ApplyReplacesWholesale(t *testing.T) {
	c := NewCandidate("c1", testRequest())
	c.Apply(Draft{Stem: "first", Choices: []string{"1", "2", "3", "4", "5"}, Answer: ChoiceAnswer(0)})
	c.CurriculumApproved = true
	c.SetDifficulty(DifficultyAnalysis{Score: 90, Grade: GradeSemiKiller})
	c.SetCritique(ReviewCritique{Score: 5})

	d := Draft{Stem: "second", Choices: []string{"a", "b", "c", "d", "e"}, Answer: ChoiceAnswer(3)}
	c.Apply(d)
	d.Choices[0] = "mutated"

	assert.Equal(t, "second", c.Stem)
	assert.Equal(t, "a", c.Choices[0])
	assert.Nil(t, c.Difficulty)
	assert.Nil(t, c.Critique)
	assert.False(t, c.CurriculumApproved)
	assert.Len(t, c.Provenance, 2)
}

func TestCandidate_CorrectKeepsProvenance(t *testing.T) {
	c := NewCandidate("c1", testRequest())
	c.Apply(Draft{Stem: `\ln 1 + x`, Provenance: Provenance{Raw: "raw"}})
	c.SetDifficulty(DifficultyAnalysis{Score: 70})

	c.Correct(Draft{Stem: "0 + x"}, []string{"ln 1 = 0"})

	assert.Equal(t, "0 + x", c.Stem)
	assert.Equal(t, []string{"ln 1 = 0"}, c.Corrections)
	assert.Nil(t, c.Difficulty)
	require.Len(t, c.Provenance, 1)
	assert.Equal(t, "raw", c.Provenance[0].Raw)
}

func TestCandidate_FailIsTerminal(t *testing.T) {
	c := NewCandidate("c1", testRequest())
	c.Fail(errors.New("boom"))
	assert.Equal(t, StatusFailed, c.Status)
	assert.Error(t, c.Transition(StatusGenerated))
}

func TestRequest_Validate(t *testing.T) {
	ok := testRequest()
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Track = "physics"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.Points = 5
	assert.Error(t, bad.Validate())

	ultra := ok
	ultra.Category = CategoryLimit
	ultra.Points = 3
	assert.Error(t, ultra.Validate())

	ultra.Points = 4
	ultra.FusionLevel = 5
	assert.Error(t, ultra.Validate())
}

func TestRequest_Escalate(t *testing.T) {
	req := testRequest()
	req.Points = 3
	esc := req.Escalate()

	assert.Equal(t, CategoryFusion, esc.Category)
	assert.Equal(t, 3, esc.FusionLevel)
	assert.Equal(t, 4, esc.Points)
	assert.True(t, esc.Escalated)
	assert.Empty(t, req.Category, "original request must not change")
	require.NoError(t, esc.Validate())

	esc.FusionLevel = 4
	assert.Equal(t, 4, esc.Escalate().FusionLevel)
}

func TestCritiqueError(t *testing.T) {
	curr := ReviewCritique{Synthesized: true, Issues: []Issue{{Kind: IssueCurriculum, Detail: "ln x outside calculus"}}}
	var cv *CurriculumViolation
	assert.ErrorAs(t, CritiqueError(TrackMath2, curr), &cv)

	val := ReviewCritique{Synthesized: true, Issues: []Issue{{Kind: IssueValidation, Detail: "4 choices"}}}
	var vf *ValidationFailure
	assert.ErrorAs(t, CritiqueError(TrackMath2, val), &vf)

	rev := ReviewCritique{Score: 4, Issues: []Issue{{Kind: IssueMath, Detail: "wrong answer"}}}
	var rr *ReviewRejected
	assert.ErrorAs(t, CritiqueError(TrackMath2, rev), &rr)

	assert.True(t, Retryable(&TransientServiceFailure{Op: "review", Err: errors.New("timeout")}))
	assert.True(t, Retryable(&ParseFailure{Err: errors.New("bad json")}))
	assert.False(t, Retryable(&ReviewRejected{}))
}

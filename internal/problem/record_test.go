package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptedCandidate() *Candidate {
	req := testRequest()
	req.Category = CategoryFusion
	req.FusionLevel = 3

	c := NewCandidate("5d0c8f5e-0000-4000-8000-000000000001", req)
	c.Apply(Draft{
		Stem:     "모든 실수 x에 대하여 f(x) ≥ 0 이 성립할 때, ∫₀¹ f(x)dx 의 최솟값은?",
		Choices:  []string{"1/2", "1", "3/2", "2", "5/2"},
		Answer:   ChoiceAnswer(2),
		Solution: "항등식을 이용하여 ...",
	})
	c.SetDifficulty(DifficultyAnalysis{
		Base:            80,
		Bonuses:         []Bonus{{Reason: "fusion", Points: 10}, {Reason: "identity", Points: 10}},
		Score:           100,
		Grade:           GradeKiller,
		ExpectedMinutes: 25,
		Units:           []string{"미분", "적분", "극한"},
	})
	c.SetCritique(ReviewCritique{Pass: true, Score: 9, Suggestions: "none"})
	c.CurriculumApproved = true
	c.RevisionCount = 1
	c.Status = StatusAccepted
	return c
}

func TestRecord_RoundTrip(t *testing.T) {
	rec := acceptedCandidate().ToRecord()

	data, err := MarshalRecord(rec)
	require.NoError(t, err)

	got, err := UnmarshalRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	again, err := MarshalRecord(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestRecord_CandidateRoundTrip(t *testing.T) {
	c := acceptedCandidate()
	back := c.ToRecord().Candidate()

	assert.Equal(t, c.ToRecord(), back.ToRecord())
	assert.True(t, back.CurriculumApproved)
}

func TestRecord_DoesNotAliasCandidate(t *testing.T) {
	c := acceptedCandidate()
	c.SetCritique(ReviewCritique{Pass: true, Score: 9, Issues: []Issue{{Kind: IssueOther, Detail: "표기 통일"}}})
	rec := c.ToRecord()

	c.Difficulty.Bonuses[0].Points = 0
	c.Difficulty.Units[0] = "수열"
	c.Critique.Issues[0].Detail = "changed"

	assert.Equal(t, 10, rec.DifficultyAnalysis.Bonuses[0].Points)
	assert.Equal(t, "미분", rec.DifficultyAnalysis.Units[0])
	assert.Equal(t, "표기 통일", rec.Critique.Issues[0].Detail)
}

func TestRecord_ShortAnswerRoundTrip(t *testing.T) {
	req := testRequest()
	req.Format = FormatShortAnswer
	c := NewCandidate("c2", req)
	c.Apply(Draft{Stem: "값을 구하시오.", Answer: NumericAnswer("12")})
	c.Status = StatusAccepted

	data, err := MarshalRecord(c.ToRecord())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"choices":[]`)

	got, err := UnmarshalRecord(data)
	require.NoError(t, err)
	assert.Equal(t, "12", got.Answer.Value)
	assert.Nil(t, got.Answer.Index)
}

func TestUnmarshalRecord_SchemaVersion(t *testing.T) {
	_, err := UnmarshalRecord([]byte(`{"schema_version":"v2.0.0","id":"x"}`))
	assert.Error(t, err)

	_, err = UnmarshalRecord([]byte(`{"schema_version":"garbage","id":"x"}`))
	assert.Error(t, err)

	rec, err := UnmarshalRecord([]byte(`{"schema_version":"v1.3.0","id":"x","choices":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "x", rec.ID)
}

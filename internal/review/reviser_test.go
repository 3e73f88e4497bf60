package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/problemgen"
)

func TestRevise_ReturnsReplacementDraft(t *testing.T) {
	mock := llm.NewMockProvider(llm.Text(`{"stem": "수정된 문제", "choices": ["1", "2", "3", "4", "5"], "answer": "④", "solution": "수정된 풀이"}`))
	r := NewReviser(mock, DefaultReviserConfig())

	c := testCandidate()
	c.SetCritique(problem.ReviewCritique{
		Score:       4,
		Issues:      []problem.Issue{{Kind: problem.IssueMath, Detail: "정답이 틀림"}},
		Suggestions: "조건을 보완",
	})

	d, err := r.Revise(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "수정된 문제", d.Stem)
	require.NotNil(t, d.Answer.Index)
	assert.Equal(t, 3, *d.Answer.Index)

	call := mock.LastCall()
	assert.Equal(t, problemgen.ProblemSchema, call.Schema)
	msg := call.Messages[0].Content
	for _, want := range []string{
		"원본 문항:",
		"문제: 함수 $f(x) = x^3 - 3x$의 극댓값은?",
		"- [mathematical_error] 정답이 틀림",
		"개선 제안:\n조건을 보완",
		"검토 점수: 4/10",
		"e^x, ln x를 사용할 수 없습니다",
	} {
		assert.Contains(t, msg, want)
	}
	// The candidate itself is untouched.
	assert.Equal(t, "함수 $f(x) = x^3 - 3x$의 극댓값은?", c.Stem)
}

func TestRevise_RequiresCritique(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := NewReviser(mock, DefaultReviserConfig()).Revise(context.Background(), testCandidate())
	assert.ErrorIs(t, err, ErrNoCritique)
	assert.Equal(t, 0, mock.CallCount())
}

func TestRevise_Failures(t *testing.T) {
	c := testCandidate()
	c.SetCritique(problem.ReviewCritique{Score: 3})

	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.Text("수정할 수 없습니다"),
	)
	r := NewReviser(mock, DefaultReviserConfig())

	_, err := r.Revise(context.Background(), c)
	var tf *problem.TransientServiceFailure
	require.True(t, errors.As(err, &tf), "got %v", err)
	assert.Equal(t, "revise", tf.Op)

	_, err = r.Revise(context.Background(), c)
	var pf *problem.ParseFailure
	assert.True(t, errors.As(err, &pf), "got %v", err)
}

package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
)

func testRequest() problem.Request {
	return problem.Request{
		Track:  problem.TrackMath2,
		Topic:  "미분",
		Tier:   problem.TierMid,
		Format: problem.FormatMultipleChoice,
		Points: 3,
	}
}

func mcProblemJSON() json.RawMessage {
	return json.RawMessage(`{
		"stem": "함수 $f(x) = x^3 - 3x$의 극댓값은?",
		"choices": ["1", "2", "3", "4", "5"],
		"answer": "2",
		"solution": "$f'(x) = 3x^2 - 3 = 0$에서 $x = -1$일 때 극댓값 $f(-1) = 2$"
	}`)
}

func TestGenerate_MultipleChoice(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: mcProblemJSON()})
	gen := New(mock, DefaultConfig())

	d, err := gen.Generate(context.Background(), GenerateInput{Request: testRequest()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Stem != "함수 $f(x) = x^3 - 3x$의 극댓값은?" {
		t.Errorf("unexpected stem: %q", d.Stem)
	}
	if len(d.Choices) != 5 {
		t.Errorf("expected 5 choices, got %d", len(d.Choices))
	}
	if d.Answer.Index == nil || *d.Answer.Index != 1 {
		t.Errorf("expected answer index 1, got %+v", d.Answer)
	}
	if d.Provenance.Raw == "" {
		t.Error("expected raw response in provenance")
	}
}

func TestGenerate_ShortAnswer(t *testing.T) {
	mock := llm.NewMockProvider(llm.Text(`{"stem": "$\lim_{x \to 2} \frac{x^2 - 4}{x - 2}$의 값을 구하시오.", "answer": 4, "solution": "x + 2 → 4"}`))
	gen := New(mock, DefaultConfig())

	req := testRequest()
	req.Format = problem.FormatShortAnswer
	d, err := gen.Generate(context.Background(), GenerateInput{Request: req})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Answer.Value != "4" {
		t.Errorf("expected answer 4, got %q", d.Answer.Value)
	}
	if !strings.Contains(d.Stem, `\frac`) {
		t.Errorf("latex lost in repair: %q", d.Stem)
	}
	if len(d.Provenance.Steps) == 0 {
		t.Error("expected repair steps for unescaped latex")
	}
}

func TestGenerate_RepairsMalformedResponse(t *testing.T) {
	raw := "```json\n{'stem': '다음 중 옳은 것은?', 'choices': ['1', '2', '3', '4', '5',], 'answer': '③',}\n```"
	mock := llm.NewMockProvider(llm.Text(raw))
	gen := New(mock, DefaultConfig())

	d, err := gen.Generate(context.Background(), GenerateInput{Request: testRequest()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Answer.Index == nil || *d.Answer.Index != 2 {
		t.Errorf("expected answer index 2, got %+v", d.Answer)
	}
}

func TestGenerate_SetsPurposeAndSchema(t *testing.T) {
	var purpose string
	mock := llm.NewMockProvider(llm.MockResponse{Content: mcProblemJSON()})
	gen := New(purposeSpy{inner: mock, purpose: &purpose}, DefaultConfig())

	if _, err := gen.Generate(context.Background(), GenerateInput{Request: testRequest()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purpose != llm.PurposeGenerate {
		t.Errorf("expected purpose %q, got %q", llm.PurposeGenerate, purpose)
	}
	call := mock.LastCall()
	if call.Schema != ProblemSchema {
		t.Error("expected ProblemSchema on request")
	}
	if call.System == "" || len(call.Messages) != 1 {
		t.Errorf("unexpected request shape: %+v", call)
	}
}

func TestGenerate_ServiceErrorIsTransient(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Request: testRequest()})
	var tf *problem.TransientServiceFailure
	if !errors.As(err, &tf) {
		t.Fatalf("expected TransientServiceFailure, got %v", err)
	}
	if tf.Op != "generate" {
		t.Errorf("expected op generate, got %q", tf.Op)
	}
	if !problem.Retryable(err) {
		t.Error("expected retryable error")
	}
}

func TestGenerate_CancellationIsNotTransient(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: context.Canceled})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Request: testRequest()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if problem.Retryable(err) {
		t.Error("cancellation must not be retried")
	}
}

func TestGenerate_UnrepairableIsParseFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.Text("죄송합니다. 문제를 만들 수 없습니다."))
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Request: testRequest()})
	var pf *problem.ParseFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected ParseFailure, got %v", err)
	}
}

func TestGenerate_TruncatedResponseIsRepaired(t *testing.T) {
	truncated := `{"stem": "함수 f(x)의 최댓값은?", "choices": ["1", "2", "3", "4", "5"], "answer": "4", "solution": "f'(x) = 0에서`
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{Content: json.RawMessage(truncated)}})
	gen := New(mock, DefaultConfig())

	d, err := gen.Generate(context.Background(), GenerateInput{Request: testRequest()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Answer.Index == nil || *d.Answer.Index != 3 {
		t.Errorf("expected answer index 3, got %+v", d.Answer)
	}
	if d.Solution != "f'(x) = 0에서" {
		t.Errorf("unexpected solution: %q", d.Solution)
	}
}

func TestGenerate_EmptyTruncatedResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{}})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Request: testRequest()})
	var pf *problem.ParseFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected ParseFailure, got %v", err)
	}
}

// purposeSpy records the purpose label of the last call.
type purposeSpy struct {
	inner   llm.Provider
	purpose *string
}

func (p purposeSpy) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	*p.purpose = llm.PurposeFrom(ctx)
	return p.inner.Generate(ctx, req)
}

func (p purposeSpy) ModelID() string { return p.inner.ModelID() }

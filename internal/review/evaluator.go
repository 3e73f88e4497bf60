// Package review adapts the external review and revision services.
//
// Both adapters serialize a candidate into a prompt and run the response
// through the repair layer; an unrepairable response is a
// *problem.ParseFailure and a failed call a *problem.TransientServiceFailure,
// so the caller can retry both under one budget.
package review

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/problemgen"
	"github.com/abhisek/suneung/internal/repair"
)

const reviewSystemPrompt = `당신은 대학수학능력시험 수학 영역 검토위원입니다. 출제된 문항을 2015 개정 교육과정 기준으로 엄격하게 검토합니다.

검토 기준:
1. 2015 개정 교육과정 준수 여부 (과목별 출제 범위)
2. 문제와 정답의 수학적 정확성
3. 정답 유일성: 조건이 충분하여 단 하나의 정답만 존재하는지
4. 풀이 과정의 논리성
5. 요청된 난이도와의 일치
6. 문제의 명확성 (모호한 표현이나 다중 해석 가능성)

issues의 각 항목은 [교육과정], [수학 오류], [난이도], [기타] 중 하나로 시작합니다.
score는 1(사용 불가)부터 10(그대로 출제 가능)까지입니다.
응답은 pass, score, issues, suggestions 필드를 가진 JSON 객체 하나만 출력합니다.`

// EvaluatorConfig controls the behavior of the Evaluator.
type EvaluatorConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultEvaluatorConfig returns an EvaluatorConfig with recommended defaults.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{MaxTokens: 1024, Temperature: 0.2}
}

// Evaluator produces review critiques through the review service.
type Evaluator struct {
	provider llm.Provider
	config   EvaluatorConfig
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(p llm.Provider, cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{provider: p, config: cfg}
}

// verdict is the reviewer response after repair.
type verdict struct {
	Pass        bool     `json:"pass"`
	Score       float64  `json:"score" validate:"gte=1,lte=10"`
	Issues      []string `json:"issues" validate:"dive,required"`
	Suggestions string   `json:"suggestions"`
}

// Evaluate reviews the current content of c. The returned critique
// reflects the reviewer's verdict as given; acceptance thresholds are the
// caller's business.
func (e *Evaluator) Evaluate(ctx context.Context, c *problem.Candidate) (*problem.ReviewCritique, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeReview)

	req := llm.Request{
		System: reviewSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildReviewMessage(c)},
		},
		Schema:      ReviewSchema,
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	}

	resp, err := e.provider.Generate(ctx, req)
	raw, err := problemgen.ResponseText("review", resp, err)
	if err != nil {
		return nil, err
	}

	var v verdict
	res, err := repair.Decode(raw, ReviewSchema, &v)
	if err != nil {
		return nil, err
	}
	if err := problem.Validator().Struct(v); err != nil {
		return nil, &problem.ParseFailure{Raw: raw, Steps: res.Steps, Err: fmt.Errorf("review verdict: %w", err)}
	}

	critique := &problem.ReviewCritique{
		Pass:        v.Pass,
		Score:       int(math.Round(v.Score)),
		Suggestions: strings.TrimSpace(v.Suggestions),
	}
	for _, s := range v.Issues {
		critique.Issues = append(critique.Issues, classifyIssue(s, v.Pass))
	}
	return critique, nil
}

func buildReviewMessage(c *problem.Candidate) string {
	var b strings.Builder
	b.WriteString("다음 수학 문제를 검토하고 평가해 주세요.\n\n")
	writeRequest(&b, c.Request)
	b.WriteString("\n")
	writeProblem(&b, c)
	if d := c.Difficulty; d != nil {
		fmt.Fprintf(&b, "\n자동 난이도 분석: %d점 (%s), 예상 풀이 시간 %d분\n", d.Score, d.Grade, d.ExpectedMinutes)
	}
	return b.String()
}

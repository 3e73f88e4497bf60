package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/problemgen"
	"github.com/abhisek/suneung/internal/repair"
)

const reviseSystemPrompt = `당신은 대학수학능력시험 수학 영역 출제위원입니다. 검토 의견을 반영하여 문항을 수정합니다.

수정 시 필수 확인 사항:
1. 지적된 문제점을 모두 해결합니다.
2. 정답이 유일하도록 문제 조건을 정밀하게 설정합니다.
3. 모호한 표현을 없애고 필요하면 "단," "이때," 같은 조건을 덧붙입니다.
4. 변수의 범위와 정의역을 명시합니다.
5. 과목, 단원, 형식, 배점은 바꾸지 않습니다.
6. 수식은 LaTeX로 작성하고 JSON 문자열 안의 역슬래시는 두 번 씁니다.

수정된 문항 전체를 stem, choices, answer, solution 필드를 가진 JSON 객체 하나로 출력합니다.
5지선다형의 answer는 정답 번호(1~5), 단답형의 answer는 1 이상 999 이하의 자연수입니다.`

// ErrNoCritique is returned when a candidate without a critique is sent for
// revision.
var ErrNoCritique = errors.New("candidate has no critique to revise against")

// ReviserConfig controls the behavior of the Reviser.
type ReviserConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultReviserConfig returns a ReviserConfig with recommended defaults.
func DefaultReviserConfig() ReviserConfig {
	return ReviserConfig{MaxTokens: 4096, Temperature: 0.5}
}

// Reviser requests revised content through the generation service.
type Reviser struct {
	provider llm.Provider
	config   ReviserConfig
}

// NewReviser creates a Reviser.
func NewReviser(p llm.Provider, cfg ReviserConfig) *Reviser {
	return &Reviser{provider: p, config: cfg}
}

// Revise asks for a replacement of the content of c that resolves its
// critique. The revised draft goes through the same repair contract as a
// freshly generated one.
func (r *Reviser) Revise(ctx context.Context, c *problem.Candidate) (*problem.Draft, error) {
	if c.Critique == nil {
		return nil, ErrNoCritique
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeRevise)

	req := llm.Request{
		System: reviseSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildRevisionMessage(c)},
		},
		Schema:      problemgen.ProblemSchema,
		MaxTokens:   r.config.MaxTokens,
		Temperature: r.config.Temperature,
	}

	resp, err := r.provider.Generate(ctx, req)
	raw, err := problemgen.ResponseText("revise", resp, err)
	if err != nil {
		return nil, err
	}

	d, err := repair.Parse(raw, c.Request.Format, problemgen.ProblemSchema)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func buildRevisionMessage(c *problem.Candidate) string {
	var b strings.Builder
	b.WriteString("다음 문항을 개선해 주세요.\n\n")
	writeRequest(&b, c.Request)
	if c.Request.Track != problem.TrackCalculus {
		fmt.Fprintf(&b, "제한: %s 과목이므로 e^x, ln x를 사용할 수 없습니다.\n", c.Request.Track.Label())
	}
	b.WriteString("\n원본 문항:\n")
	writeProblem(&b, c)

	b.WriteString("\n발견된 문제점:\n")
	if len(c.Critique.Issues) == 0 {
		b.WriteString("- 없음\n")
	}
	for _, is := range c.Critique.Issues {
		fmt.Fprintf(&b, "- [%s] %s\n", is.Kind, is.Detail)
	}
	if c.Critique.Suggestions != "" {
		fmt.Fprintf(&b, "\n개선 제안:\n%s\n", c.Critique.Suggestions)
	}
	fmt.Fprintf(&b, "\n검토 점수: %d/10\n", c.Critique.Score)
	return b.String()
}

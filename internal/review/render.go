package review

import (
	"fmt"
	"strings"

	"github.com/abhisek/suneung/internal/problem"
)

// writeRequest renders the request metadata of c.
func writeRequest(b *strings.Builder, req problem.Request) {
	fmt.Fprintf(b, "과목: %s\n", req.Track.Label())
	fmt.Fprintf(b, "단원: %s\n", req.Topic)
	fmt.Fprintf(b, "난이도: %s\n", req.Tier)
	fmt.Fprintf(b, "형식: %s\n", req.Format)
	fmt.Fprintf(b, "배점: %d점\n", req.Points)
	if req.UltraHard() {
		fmt.Fprintf(b, "초고난도 카테고리: %s (목표 점수 %d 이상)\n", req.Category, req.Category.MinScore())
	}
}

// writeProblem renders the content of c the way a test paper shows it.
func writeProblem(b *strings.Builder, c *problem.Candidate) {
	fmt.Fprintf(b, "문제: %s\n", c.Stem)
	for i, ch := range c.Choices {
		fmt.Fprintf(b, "%s %s\n", problem.Marker(i), ch)
	}
	fmt.Fprintf(b, "정답: %s\n", c.Answer.Display(c.Choices))
	if c.Solution != "" {
		fmt.Fprintf(b, "풀이: %s\n", c.Solution)
	}
}

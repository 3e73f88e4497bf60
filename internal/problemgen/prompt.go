package problemgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/suneung/internal/problem"
)

const systemPrompt = `당신은 대한민국 대학수학능력시험 수학 영역 출제위원입니다. 2015 개정 교육과정에 맞는 문제를 한 문항 출제합니다.

규칙:
- 요청된 과목, 단원, 난이도, 형식, 배점에 맞는 문제를 하나만 출제합니다.
- 수식은 LaTeX로 작성하고 $ 기호로 감쌉니다. JSON 문자열 안의 역슬래시는 반드시 두 번 씁니다 (\\frac).
- 문제는 그 자체로 완결되어야 하며 그림 없이 풀 수 있어야 합니다.
- 5지선다형은 선택지를 정확히 5개 제시하고, 선택지에 ①~⑤ 번호를 붙이지 않습니다. answer에는 정답 번호(1~5)를 씁니다.
- 단답형은 choices를 비우고, answer에는 1 이상 999 이하의 자연수를 씁니다.
- 오답 선택지는 학생들이 흔히 범하는 실수를 반영해야 하며 서로 달라야 합니다.
- solution에는 정답에 이르는 풀이 과정을 단계별로 씁니다.
- 자연지수함수 e^x와 자연로그 ln x는 미적분 과목에서만 사용합니다.
- "이미 출제된 문제" 목록에 있는 문제와 같은 문제를 내지 않습니다.
- 응답은 stem, choices, answer, solution 필드를 가진 JSON 객체 하나만 출력합니다.`

var tierLabels = map[problem.Tier]string{
	problem.TierLow:  "하 (기본 개념 확인)",
	problem.TierMid:  "중 (개념 응용)",
	problem.TierHigh: "상 (고난도)",
}

var formatLabels = map[problem.Format]string{
	problem.FormatMultipleChoice: "5지선다형",
	problem.FormatShortAnswer:    "단답형",
}

// categoryDirectives describe what each ultra-hard category must exercise.
var categoryDirectives = map[problem.Category]string{
	problem.CategoryIdentity: "풀이 과정에서 항등식을 스스로 발견하여 활용해야 풀리도록 설계하십시오. " +
		"항등식을 문제에 직접 제시하지 말고, '모든 실수 x에 대하여 성립한다'와 같은 조건에서 유도되게 하십시오.",
	problem.CategoryFusion: "서로 다른 단원의 개념을 유기적으로 결합하여 한 단원의 지식만으로는 풀 수 없게 하십시오.",
	problem.CategoryInequality: "부등식 조건이 해의 범위를 실질적으로 제한하도록 하십시오. " +
		"정의역 제한이나 '(단, x > 0)' 같은 단서만으로는 부등식 조건으로 인정되지 않습니다.",
	problem.CategoryLimit: "극한, 연속성, 미분가능성을 결합하여 조건을 만족시키는 함수를 추론하게 하십시오.",
}

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	req := input.Request

	var b strings.Builder

	fmt.Fprintf(&b, "과목: %s\n", req.Track.Label())
	fmt.Fprintf(&b, "단원: %s\n", req.Topic)
	fmt.Fprintf(&b, "난이도: %s\n", label(tierLabels, req.Tier))
	fmt.Fprintf(&b, "형식: %s\n", label(formatLabels, req.Format))
	fmt.Fprintf(&b, "배점: %d점\n", req.Points)
	if req.Pattern != "" {
		fmt.Fprintf(&b, "문제 유형: %s\n", req.Pattern)
	}
	if req.Track != problem.TrackCalculus {
		fmt.Fprintf(&b, "제한: %s 과목이므로 e^x, ln x, 자연로그, 자연지수를 사용하지 마십시오.\n", req.Track.Label())
	}

	if req.UltraHard() {
		b.WriteString("\n초고난도(킬러) 문항 조건:\n")
		b.WriteString(buildUltraHard(req))
	}

	b.WriteString("\n\n이미 출제된 문제:\n")
	b.WriteString(buildDedup(input.PriorStems, cfg.MaxPriorStems))

	return b.String()
}

// buildUltraHard lists the directives of an ultra-hard request.
func buildUltraHard(req problem.Request) string {
	var lines []string
	if d, ok := categoryDirectives[req.Category]; ok {
		lines = append(lines, d)
	}
	if req.FusionLevel > 0 {
		lines = append(lines, fmt.Sprintf("최소 %d개 단원을 융합하십시오.", req.FusionLevel))
	}
	if req.Escalated {
		lines = append(lines,
			"항등식을 풀이 단계에서 활용하게 하십시오.",
			"해의 범위를 제한하는 부등식 조건을 포함하십시오.")
	}
	lines = append(lines, fmt.Sprintf("목표 난이도 점수는 %d점 이상, 예상 풀이 시간은 20분 이상입니다.", req.Category.MinScore()))

	var b strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l)
	}
	return strings.TrimRight(b.String(), "\n")
}

func label[K comparable](labels map[K]string, k K) string {
	if l, ok := labels[k]; ok {
		return l
	}
	return fmt.Sprint(k)
}

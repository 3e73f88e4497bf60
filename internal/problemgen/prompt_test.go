package problemgen

import (
	"strings"
	"testing"

	"github.com/abhisek/suneung/internal/problem"
)

func TestBuildUserMessage_MinimalContext(t *testing.T) {
	msg := buildUserMessage(GenerateInput{Request: testRequest()}, DefaultConfig())

	for _, want := range []string{
		"과목: 수학II",
		"단원: 미분",
		"난이도: 중",
		"형식: 5지선다형",
		"배점: 3점",
		"이미 출제된 문제:\n없음",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing %q in:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "초고난도") {
		t.Error("regular request must not carry ultra-hard directives")
	}
}

func TestBuildUserMessage_TranscendentalRestriction(t *testing.T) {
	req := testRequest()
	if msg := buildUserMessage(GenerateInput{Request: req}, DefaultConfig()); !strings.Contains(msg, "ln x") {
		t.Error("expected restriction for math2")
	}

	req.Track = problem.TrackCalculus
	if msg := buildUserMessage(GenerateInput{Request: req}, DefaultConfig()); strings.Contains(msg, "제한:") {
		t.Error("calculus must not be restricted")
	}
}

func TestBuildUserMessage_UltraHard(t *testing.T) {
	req := testRequest()
	req.Tier = problem.TierHigh
	req.Points = 4
	req.Category = problem.CategoryIdentity
	req.FusionLevel = 3

	msg := buildUserMessage(GenerateInput{Request: req}, DefaultConfig())
	if !strings.Contains(msg, "초고난도(킬러) 문항 조건") {
		t.Error("missing ultra-hard section")
	}
	if !strings.Contains(msg, "항등식을 스스로 발견") {
		t.Error("missing identity directive")
	}
	if !strings.Contains(msg, "최소 3개 단원") {
		t.Error("missing fusion level")
	}
	if !strings.Contains(msg, "90점 이상") {
		t.Error("missing category minimum score")
	}
}

func TestBuildUserMessage_Escalated(t *testing.T) {
	req := testRequest()
	req.Tier = problem.TierHigh
	msg := buildUserMessage(GenerateInput{Request: req.Escalate()}, DefaultConfig())

	if !strings.Contains(msg, "항등식을 풀이 단계에서 활용") {
		t.Error("missing identity requirement")
	}
	if !strings.Contains(msg, "부등식 조건을 포함") {
		t.Error("missing inequality requirement")
	}
}

func TestBuildUserMessage_PriorStems(t *testing.T) {
	input := GenerateInput{
		Request:    testRequest(),
		PriorStems: []string{"첫 문제", "둘째\n문제", "셋째 문제"},
	}
	cfg := DefaultConfig()
	cfg.MaxPriorStems = 2

	msg := buildUserMessage(input, cfg)
	if strings.Contains(msg, "첫 문제") {
		t.Error("expected oldest stem to be dropped")
	}
	if !strings.Contains(msg, "1. 둘째 문제\n2. 셋째 문제") {
		t.Errorf("unexpected dedup list:\n%s", msg)
	}
}

func TestBuildDedup_NoLimit(t *testing.T) {
	got := buildDedup([]string{"a", "b"}, 0)
	if got != "1. a\n2. b" {
		t.Errorf("unexpected: %q", got)
	}
}

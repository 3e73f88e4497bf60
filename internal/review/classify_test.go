package review

import (
	"testing"

	"github.com/abhisek/suneung/internal/problem"
)

func TestClassifyIssue(t *testing.T) {
	tests := []struct {
		in     string
		kind   problem.IssueKind
		detail string
	}{
		{"[교육과정] 수학II에서 ln x 사용", problem.IssueCurriculum, "수학II에서 ln x 사용"},
		{"[수학 오류] 정답이 ③이 아님", problem.IssueMath, "정답이 ③이 아님"},
		{"[수학오류]답 불일치", problem.IssueMath, "답 불일치"},
		{"[난이도] 4점 문항으로는 쉬움", problem.IssueDifficulty, "4점 문항으로는 쉬움"},
		{"[기타] 오류 표현", problem.IssueOther, "오류 표현"},
		{"2015 개정 교육과정 범위를 벗어남", problem.IssueCurriculum, "2015 개정 교육과정 범위를 벗어남"},
		{"정답이 유일하지 않음", problem.IssueMath, "정답이 유일하지 않음"},
		{"The answer is incorrect", problem.IssueMath, "The answer is incorrect"},
		{"  문제가 너무 쉽다 ", problem.IssueDifficulty, "문제가 너무 쉽다"},
		{"표현이 모호함", problem.IssueOther, "표현이 모호함"},
		{"수학적 오류 없음", problem.IssueOther, "수학적 오류 없음"},
		{"계산 오류는 발견되지 않음", problem.IssueOther, "계산 오류는 발견되지 않음"},
		{"no error found", problem.IssueOther, "no error found"},
		{"I did not find any error", problem.IssueOther, "I did not find any error"},
		{"교육과정 위반 없음", problem.IssueOther, "교육과정 위반 없음"},
		{"표기 오류 없음. 다만 계산 오류가 있음", problem.IssueMath, "표기 오류 없음. 다만 계산 오류가 있음"},
		{"풀이에 오류가 있어 답이 없음", problem.IssueMath, "풀이에 오류가 있어 답이 없음"},
	}
	for _, tt := range tests {
		got := classifyIssue(tt.in, false)
		if got.Kind != tt.kind || got.Detail != tt.detail {
			t.Errorf("classifyIssue(%q) = %+v, want {%s %s}", tt.in, got, tt.kind, tt.detail)
		}
	}
}

func TestClassifyIssue_PassingReview(t *testing.T) {
	// Untagged notes on a passing review are advisory.
	got := classifyIssue("계산 오류 가능성 점검 권장", true)
	if got.Kind != problem.IssueOther {
		t.Errorf("untagged note on pass = %s, want %s", got.Kind, problem.IssueOther)
	}
	// Explicit tags keep their kind.
	got = classifyIssue("[수학 오류] 정답이 ③이 아님", true)
	if got.Kind != problem.IssueMath {
		t.Errorf("tagged issue on pass = %s, want %s", got.Kind, problem.IssueMath)
	}
}

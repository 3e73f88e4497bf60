package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 5, "abcd…"},
		{"미분계수", 5, "미분…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestRenderFrame_FillsHeight(t *testing.T) {
	header := RenderHeader("Batch", "3/5", 80)
	footer := RenderFooter([]KeyHint{{Key: "q", Description: "Quit"}}, 80)
	frame := RenderFrame(header, "body", footer, 80, 24)

	if h := lipgloss.Height(frame); h != 24 {
		t.Errorf("expected frame height 24, got %d", h)
	}
	if !strings.Contains(frame, "suneung") || !strings.Contains(frame, "3/5") {
		t.Error("header content missing from frame")
	}
}

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(40, 30) || !IsTooSmall(100, 10) || IsTooSmall(MinWidth, MinHeight) {
		t.Error("unexpected size classification")
	}
}

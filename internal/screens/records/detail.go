package records

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/suneung/internal/paper"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/router"
	"github.com/abhisek/suneung/internal/ui/layout"
)

// DetailScreen shows one record, scrollable line by line.
type DetailScreen struct {
	rec    problem.Record
	lines  []string
	offset int
}

var (
	_ router.Screen          = (*DetailScreen)(nil)
	_ router.KeyHintProvider = (*DetailScreen)(nil)
)

func NewDetail(rec problem.Record) *DetailScreen {
	return &DetailScreen{
		rec:   rec,
		lines: strings.Split(strings.TrimRight(paper.Detail(rec), "\n"), "\n"),
	}
}

func (s *DetailScreen) Init() tea.Cmd { return nil }

func (s *DetailScreen) Title() string {
	return "Record " + shortID(s.rec.ID)
}

func (s *DetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DetailScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch k.String() {
	case "esc", "backspace":
		return s, router.Pop
	case "up", "k":
		s.offset = max(s.offset-1, 0)
	case "down", "j":
		s.offset = min(s.offset+1, max(len(s.lines)-1, 0))
	case "home", "g":
		s.offset = 0
	}
	return s, nil
}

func (s *DetailScreen) View(width, height int) string {
	end := min(s.offset+height, len(s.lines))
	visible := make([]string, 0, end-s.offset)
	for _, l := range s.lines[s.offset:end] {
		visible = append(visible, " "+layout.Truncate(l, width-2))
	}
	return lipgloss.JoinVertical(lipgloss.Left, visible...)
}

// Package records implements the record browser: a filterable list of
// stored problems and a detail view.
package records

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/router"
	"github.com/abhisek/suneung/internal/store"
	"github.com/abhisek/suneung/internal/ui/components"
	"github.com/abhisek/suneung/internal/ui/layout"
	"github.com/abhisek/suneung/internal/ui/theme"
)

type loadedMsg struct {
	Records []problem.Record
	Err     error
}

// ListScreen lists records loaded from a RecordRepo.
type ListScreen struct {
	repo   store.RecordRepo
	filter store.RecordFilter

	records  []problem.Record
	visible  []int // indexes into records that match the search
	selected int
	search   components.SearchInput
	loaded   bool
	errMsg   string
}

var (
	_ router.Screen          = (*ListScreen)(nil)
	_ router.KeyHintProvider = (*ListScreen)(nil)
	_ router.StatusProvider  = (*ListScreen)(nil)
)

// New creates a list of the records matching filter.
func New(repo store.RecordRepo, filter store.RecordFilter) *ListScreen {
	return &ListScreen{
		repo:   repo,
		filter: filter,
		search: components.NewSearchInput("track, topic, status, grade or text"),
	}
}

func (s *ListScreen) Init() tea.Cmd {
	return func() tea.Msg {
		recs, err := s.repo.List(context.Background(), s.filter)
		return loadedMsg{Records: recs, Err: err}
	}
}

func (s *ListScreen) Title() string { return "Records" }

func (s *ListScreen) Status() string {
	if !s.loaded {
		return ""
	}
	return fmt.Sprintf("%d/%d", len(s.visible), len(s.records))
}

func (s *ListScreen) KeyHints() []layout.KeyHint {
	if s.search.Focused() {
		return []layout.KeyHint{{Key: "Enter", Description: "Apply"}, {Key: "Esc", Description: "Done"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *ListScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.records = msg.Records
		s.refilter()
		return s, nil

	case tea.KeyMsg:
		if s.search.Focused() {
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			s.refilter()
			return s, cmd
		}
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "esc":
			return s, router.Pop
		case "/":
			return s, s.search.Focus()
		case "up", "k":
			s.selected = max(s.selected-1, 0)
		case "down", "j":
			s.selected = min(s.selected+1, max(len(s.visible)-1, 0))
		case "enter":
			if rec, ok := s.current(); ok {
				return s, router.Push(NewDetail(rec))
			}
		}
	}
	return s, nil
}

func (s *ListScreen) current() (problem.Record, bool) {
	if s.selected < 0 || s.selected >= len(s.visible) {
		return problem.Record{}, false
	}
	return s.records[s.visible[s.selected]], true
}

func (s *ListScreen) refilter() {
	s.visible = s.visible[:0]
	for i, rec := range s.records {
		grade := ""
		if rec.DifficultyAnalysis != nil {
			grade = string(rec.DifficultyAnalysis.Grade)
		}
		if s.search.Matches(rec.ID, rec.Request.String(), rec.Request.Track.Label(), string(rec.Status), grade, rec.Stem) {
			s.visible = append(s.visible, i)
		}
	}
	s.selected = min(s.selected, max(len(s.visible)-1, 0))
}

func (s *ListScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(" " + s.search.View() + "\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render("  Error: " + s.errMsg))
		return b.String()
	case !s.loaded:
		b.WriteString(theme.Dim.Render("  Loading records..."))
		return b.String()
	case len(s.visible) == 0:
		b.WriteString(theme.Hint.Render("  No records match."))
		return b.String()
	}

	rows := max(height-2, 1)
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}
	end := min(start+rows, len(s.visible))
	for i := start; i < end; i++ {
		line := row(s.records[s.visible[i]], width-4)
		if i == s.selected {
			b.WriteString(theme.Selected.Render(" ▸ ") + line + "\n")
		} else {
			b.WriteString("   " + line + "\n")
		}
	}
	return b.String()
}

func row(rec problem.Record, width int) string {
	status := theme.StatusColor(rec.Status).Render(fmt.Sprintf("%-9s", rec.Status))
	score := "   -"
	if a := rec.DifficultyAnalysis; a != nil {
		score = theme.GradeColor(a.Grade).Render(fmt.Sprintf("%4d", a.Score))
	}
	meta := fmt.Sprintf(" %s %s/%s/%s ", shortID(rec.ID), rec.Request.Track.Label(), rec.Request.Topic, rec.Request.Tier)
	used := 9 + 4 + lipgloss.Width(meta)
	return status + score + meta + theme.Dim.Render(layout.Truncate(oneLine(rec.Stem), width-used))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

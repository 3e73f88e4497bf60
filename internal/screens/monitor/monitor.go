// Package monitor shows a running batch: one row per request with its
// current pipeline status, and a progress bar over finished candidates.
package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/suneung/internal/pipeline"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/router"
	"github.com/abhisek/suneung/internal/screens/records"
	"github.com/abhisek/suneung/internal/ui/components"
	"github.com/abhisek/suneung/internal/ui/layout"
	"github.com/abhisek/suneung/internal/ui/theme"
)

// TransitionMsg carries one pipeline transition into the program.
type TransitionMsg pipeline.Transition

// DoneMsg is sent once the batch has finished.
type DoneMsg struct {
	Report *pipeline.Report
}

type row struct {
	id       string
	req      problem.Request
	status   problem.Status
	revision int
	reason   string
}

// Screen is the batch monitor.
type Screen struct {
	rows     []row
	counts   map[problem.Status]int
	report   *pipeline.Report
	selected int
	started  time.Time
}

var (
	_ router.Screen          = (*Screen)(nil)
	_ router.KeyHintProvider = (*Screen)(nil)
	_ router.StatusProvider  = (*Screen)(nil)
)

// New creates a monitor for reqs, indexed like the batch.
func New(reqs []problem.Request) *Screen {
	rows := make([]row, len(reqs))
	for i, req := range reqs {
		rows[i] = row{req: req, status: problem.StatusRequested}
	}
	return &Screen{
		rows:    rows,
		counts:  make(map[problem.Status]int),
		started: time.Now(),
	}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string {
	if s.report != nil {
		return "Batch finished"
	}
	return "Generating"
}

func (s *Screen) Status() string {
	return fmt.Sprintf("✓ %d  ✗ %d  ! %d",
		s.counts[problem.StatusAccepted], s.counts[problem.StatusRejected], s.counts[problem.StatusFailed])
}

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Navigate"}}
	if s.report != nil {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Open"})
	}
	return append(hints, layout.KeyHint{Key: "q", Description: "Quit"})
}

// Done reports whether the batch has finished.
func (s *Screen) Done() bool { return s.report != nil }

func (s *Screen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case TransitionMsg:
		if msg.Index < 0 || msg.Index >= len(s.rows) {
			return s, nil
		}
		r := &s.rows[msg.Index]
		r.id = msg.CandidateID
		r.req = msg.Request
		r.status = msg.To
		r.revision = msg.Revision
		r.reason = msg.Reason
		if msg.To.Terminal() {
			s.counts[msg.To]++
		}

	case DoneMsg:
		s.report = msg.Report

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "up", "k":
			s.selected = max(s.selected-1, 0)
		case "down", "j":
			s.selected = min(s.selected+1, max(len(s.rows)-1, 0))
		case "enter":
			if s.report != nil && s.selected < len(s.report.Candidates) {
				if c := s.report.Candidates[s.selected]; c != nil {
					return s, router.Push(records.NewDetail(c.ToRecord()))
				}
			}
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder

	bar := components.ProgressBar{Counts: s.counts, Total: len(s.rows), Width: width - 4}
	b.WriteString("  " + bar.View() + "\n")
	elapsed := time.Since(s.started)
	if s.report != nil {
		elapsed = s.report.Elapsed
	}
	b.WriteString(theme.Dim.Render(fmt.Sprintf("  elapsed %s", elapsed.Round(time.Second))) + "\n\n")

	rows := max(height-3, 1)
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}
	end := min(start+rows, len(s.rows))
	for i := start; i < end; i++ {
		line := s.line(i, width-4)
		if i == s.selected {
			b.WriteString(theme.Selected.Render(" ▸ ") + line + "\n")
		} else {
			b.WriteString("   " + line + "\n")
		}
	}
	return b.String()
}

func (s *Screen) line(i, width int) string {
	r := s.rows[i]
	status := theme.StatusColor(r.status).Render(fmt.Sprintf("%-15s", r.status))
	text := fmt.Sprintf("%3d  %s  rev %d", i+1, r.req.String(), r.revision)
	if r.reason != "" {
		text += "  " + r.reason
	}
	return status + " " + layout.Truncate(text, width-16)
}

// Package components holds reusable widgets of the terminal UI.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/ui/theme"
)

// segmentOrder is the left-to-right order of finished candidates.
var segmentOrder = []problem.Status{problem.StatusAccepted, problem.StatusRejected, problem.StatusFailed}

// ProgressBar shows how many candidates of a batch have finished, split
// by terminal status.
type ProgressBar struct {
	Counts map[problem.Status]int
	Total  int
	Width  int
}

// Done returns the number of candidates in a terminal status.
func (p ProgressBar) Done() int {
	n := 0
	for _, s := range segmentOrder {
		n += p.Counts[s]
	}
	return n
}

// View renders the bar followed by "done/total".
func (p ProgressBar) View() string {
	label := fmt.Sprintf("  %d/%d", p.Done(), p.Total)
	barWidth := max(p.Width-len(label), 4)

	var b strings.Builder
	used := 0
	for _, s := range segmentOrder {
		n := cells(p.Counts[s], p.Total, barWidth)
		n = min(n, barWidth-used)
		if n <= 0 {
			continue
		}
		b.WriteString(lipgloss.NewStyle().
			Background(theme.StatusColor(s).GetForeground()).
			Render(strings.Repeat(" ", n)))
		used += n
	}
	b.WriteString(lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", barWidth-used)))
	b.WriteString(theme.Dim.Render(label))
	return b.String()
}

func cells(n, total, width int) int {
	if total <= 0 || n <= 0 {
		return 0
	}
	return n * width / total
}

// Package theme holds the colors and styles of the terminal UI.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/suneung/internal/problem"
)

// Palette
var (
	Primary   = lipgloss.Color("#2563EB") // Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F97316") // Orange
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// StatusColor is the color a candidate status is drawn in.
func StatusColor(s problem.Status) lipgloss.Style {
	switch s {
	case problem.StatusAccepted:
		return lipgloss.NewStyle().Foreground(Success).Bold(true)
	case problem.StatusRejected:
		return lipgloss.NewStyle().Foreground(Warning).Bold(true)
	case problem.StatusFailed:
		return lipgloss.NewStyle().Foreground(Error).Bold(true)
	case problem.StatusNeedsRevision, problem.StatusRevised:
		return lipgloss.NewStyle().Foreground(Accent)
	default:
		return lipgloss.NewStyle().Foreground(Secondary)
	}
}

// GradeColor is the color a difficulty grade is drawn in.
func GradeColor(g problem.Grade) lipgloss.Style {
	switch g {
	case problem.GradeKiller:
		return lipgloss.NewStyle().Foreground(Error).Bold(true)
	case problem.GradeSemiKiller, problem.GradeHighest:
		return lipgloss.NewStyle().Foreground(Warning)
	default:
		return lipgloss.NewStyle().Foreground(TextDim)
	}
}

// Package app runs the terminal UI: a live monitor for batches and a
// browser for stored records.
package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/suneung/internal/pipeline"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/router"
	"github.com/abhisek/suneung/internal/screens/monitor"
	"github.com/abhisek/suneung/internal/screens/records"
	"github.com/abhisek/suneung/internal/store"
	"github.com/abhisek/suneung/internal/ui/layout"
)

var defaultHints = []layout.KeyHint{
	{Key: "Esc", Description: "Back"},
	{Key: "Ctrl+C", Description: "Quit"},
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(initial router.Screen) AppModel {
	return AppModel{router: router.New(initial)}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	// Batch events reach the monitor even when a detail screen covers it.
	case monitor.TransitionMsg, monitor.DoneMsg:
		return m, m.router.Broadcast(msg)
	}

	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.frame())
	return v
}

// frame renders the active screen inside header and footer.
func (m AppModel) frame() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	status := ""
	if sp, ok := active.(router.StatusProvider); ok {
		status = sp.Status()
	}
	hints := defaultHints
	if hp, ok := active.(router.KeyHintProvider); ok {
		hints = hp.KeyHints()
	}

	header := layout.RenderHeader(active.Title(), status, m.width)
	footer := layout.RenderFooter(hints, m.width)
	content := active.View(m.width, layout.ContentHeight(header, footer, m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Batch shows a running batch. Observe must be installed as the
// orchestrator's Observer before Run is called.
type Batch struct {
	program *tea.Program
}

// NewBatch prepares a monitor for reqs.
func NewBatch(reqs []problem.Request) *Batch {
	return &Batch{program: tea.NewProgram(newAppModel(monitor.New(reqs)))}
}

// Observe forwards a transition to the monitor. Safe for concurrent use.
func (b *Batch) Observe(t pipeline.Transition) {
	b.program.Send(monitor.TransitionMsg(t))
}

// Run starts the UI and calls run in the background. Quitting the UI
// cancels the context passed to run; Run waits for run to return either
// way and hands back its report.
func (b *Batch) Run(ctx context.Context, run func(context.Context) *pipeline.Report) (*pipeline.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan *pipeline.Report, 1)
	go func() {
		rep := run(ctx)
		b.program.Send(monitor.DoneMsg{Report: rep})
		done <- rep
	}()

	_, err := b.program.Run()
	cancel()
	return <-done, err
}

// Browse opens the record browser over the records matching filter.
func Browse(repo store.RecordRepo, filter store.RecordFilter) error {
	_, err := tea.NewProgram(newAppModel(records.New(repo, filter))).Run()
	return err
}

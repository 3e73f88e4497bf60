// Package router keeps the stack of full-screen views shown by the TUI.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/suneung/internal/ui/layout"
)

// Screen is one full-screen view.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, excluding header and footer.
	View(width, height int) string

	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status summary in
// the header, such as batch progress.
type StatusProvider interface {
	Status() string
}

// PushScreenMsg pushes Screen on top of the stack.
type PushScreenMsg struct {
	Screen Screen
}

// PopScreenMsg pops the active screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the active screen for Screen.
type ReplaceScreenMsg struct {
	Screen Screen
}

// Push returns a command emitting a PushScreenMsg.
func Push(s Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

// Pop returns a command emitting a PopScreenMsg.
func Pop() tea.Msg { return PopScreenMsg{} }

// Router manages a stack of screens. The bottom screen is never popped.
type Router struct {
	stack []Screen
}

func New(initial Screen) *Router {
	return &Router{stack: []Screen{initial}}
}

// Push adds s on top of the stack and runs its Init.
func (r *Router) Push(s Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop removes the top screen unless it is the last one.
func (r *Router) Pop() {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

// Replace swaps the top screen for s and runs its Init.
func (r *Router) Replace(s Screen) tea.Cmd {
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

func (r *Router) Active() Screen {
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update handles navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		r.Pop()
		return nil
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	updated, cmd := r.Active().Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// Broadcast delivers msg to every screen on the stack, bottom first. It is
// used for pipeline events that screens below the top still track.
func (r *Router) Broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(r.stack))
	for i, s := range r.stack {
		updated, cmd := s.Update(msg)
		r.stack[i] = updated
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}

package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// SearchInput is a one-line filter box. It starts blurred; "/" focuses it
// and enter or esc blurs it again, keeping the query.
type SearchInput struct {
	Model textinput.Model
}

// NewSearchInput creates a blurred search box.
func NewSearchInput(placeholder string) SearchInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return SearchInput{Model: ti}
}

// Focused reports whether key presses go to the box.
func (s SearchInput) Focused() bool {
	return s.Model.Focused()
}

// Focus starts capturing key presses.
func (s *SearchInput) Focus() tea.Cmd {
	return s.Model.Focus()
}

// Update forwards msg to the text box while focused. Enter and esc end
// editing.
func (s SearchInput) Update(msg tea.Msg) (SearchInput, tea.Cmd) {
	if !s.Model.Focused() {
		return s, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter", "esc":
			s.Model.Blur()
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.Model, cmd = s.Model.Update(msg)
	return s, cmd
}

func (s SearchInput) View() string {
	return s.Model.View()
}

// Query returns the trimmed, lower-cased filter text.
func (s SearchInput) Query() string {
	return strings.ToLower(strings.TrimSpace(s.Model.Value()))
}

// Matches reports whether every word of the query occurs in one of fields.
func (s SearchInput) Matches(fields ...string) bool {
	q := s.Query()
	if q == "" {
		return true
	}
	hay := strings.ToLower(strings.Join(fields, " "))
	for _, w := range strings.Fields(q) {
		if !strings.Contains(hay, w) {
			return false
		}
	}
	return true
}

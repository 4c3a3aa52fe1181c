package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput is a single-line input for pasting a passage.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput creates a focused input. charLimit <= 0 means no limit.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti}
}

func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	return t.Model.View()
}

// Passage returns the input with surrounding whitespace removed.
func (t TextInput) Passage() string {
	return strings.TrimSpace(t.Model.Value())
}

// Words counts whitespace-separated words in the input.
func (t TextInput) Words() int {
	return len(strings.Fields(t.Model.Value()))
}

// Reset clears the input.
func (t *TextInput) Reset() {
	t.Model.Reset()
}

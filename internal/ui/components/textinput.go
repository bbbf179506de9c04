package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lectura/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with Lectura styling.
type TextInput struct {
	Model    textinput.Model
	Label    string
	MaxWidth int
	locked   bool
}

// NewTextInput creates a focused, styled text input. maxLen caps the number
// of characters; 0 means unlimited.
func NewTextInput(label, placeholder string, maxLen, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if maxLen > 0 {
		ti.CharLimit = maxLen
	}
	if maxWidth > 0 {
		ti.SetWidth(maxWidth)
	}
	ti.Focus()

	return TextInput{
		Model:    ti,
		Label:    label,
		MaxWidth: maxWidth,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. A locked input ignores keys.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.locked {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label and the input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.Label == "" {
		return view
	}
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if t.Model.Focused() {
		style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}
	return style.Render(t.Label) + " " + view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Blank reports whether the value is empty after trimming.
func (t TextInput) Blank() bool {
	return strings.TrimSpace(t.Model.Value()) == ""
}

// Focus gives the input keyboard focus.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes keyboard focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Lock freezes the input while a submission is pending.
func (t *TextInput) Lock(locked bool) {
	t.locked = locked
}

// Locked reports whether the input is frozen.
func (t TextInput) Locked() bool {
	return t.locked
}

// Reset clears the value.
func (t *TextInput) Reset() {
	t.Model.Reset()
}

// Package reading shows the story and its glossary. The learner can come
// back here from any question without losing their place.
package reading

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/router"
	"github.com/abhisek/lectura/internal/screen"
	"github.com/abhisek/lectura/internal/ui/components"
	"github.com/abhisek/lectura/internal/ui/layout"
	"github.com/abhisek/lectura/internal/ui/theme"
)

const maxTextWidth = 90

// ReadingScreen renders the story with a manual scroll offset.
type ReadingScreen struct {
	ctrl        *quiz.Controller
	quizFactory func() screen.Screen

	offset   int
	lastPage int
	errMsg   string
}

var _ screen.Screen = (*ReadingScreen)(nil)
var _ screen.KeyHintProvider = (*ReadingScreen)(nil)

// New creates the reading screen. quizFactory builds the question screen.
func New(ctrl *quiz.Controller, quizFactory func() screen.Screen) *ReadingScreen {
	return &ReadingScreen{ctrl: ctrl, quizFactory: quizFactory}
}

func (r *ReadingScreen) Title() string { return "Le texte" }

func (r *ReadingScreen) Init() tea.Cmd { return nil }

func (r *ReadingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return r, nil
	}

	page := r.lastPage
	if page < 1 {
		page = 10
	}

	switch key.String() {
	case "up", "k":
		r.scroll(-1)
	case "down", "j":
		r.scroll(1)
	case "pgup", "b":
		r.scroll(-page)
	case "pgdown", "space", " ":
		r.scroll(page)
	case "home", "g":
		r.offset = 0
	case "enter", "tab":
		return r, r.toQuiz()
	}
	return r, nil
}

func (r *ReadingScreen) scroll(delta int) {
	r.offset += delta
	if r.offset < 0 {
		r.offset = 0
	}
}

func (r *ReadingScreen) toQuiz() tea.Cmd {
	var err error
	if r.ctrl.Snapshot().QuizStarted {
		err = r.ctrl.ReturnToQuiz()
	} else {
		err = r.ctrl.StartQuiz()
	}
	if err != nil {
		r.errMsg = "Impossible d'ouvrir les questions."
		return nil
	}
	next := r.quizFactory()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// renderBody returns the wrapped story and glossary lines.
func (r *ReadingScreen) renderBody(width int) []string {
	bank := r.ctrl.Bank()
	textWidth := width - 4
	if textWidth > maxTextWidth {
		textWidth = maxTextWidth
	}
	if textWidth < 20 {
		textWidth = 20
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(textWidth).Render(bank.Title()))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Foreground(theme.Text).Width(textWidth)
	for _, para := range strings.Split(strings.TrimSpace(bank.Story()), "\n\n") {
		b.WriteString(body.Render(strings.Join(strings.Fields(para), " ")))
		b.WriteString("\n\n")
	}

	if glossary := bank.Glossary(); len(glossary) > 0 {
		b.WriteString(theme.Subtitle.Bold(true).Render("Lexique"))
		b.WriteString("\n")
		def := lipgloss.NewStyle().Foreground(theme.TextDim)
		for _, g := range glossary {
			line := theme.Word.Render(g.Word) + " : " + def.Render(g.Definition)
			b.WriteString(lipgloss.NewStyle().Width(textWidth).Render(line))
			b.WriteString("\n")
		}
	}
	return strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
}

func (r *ReadingScreen) View(width, height int) string {
	lines := r.renderBody(width)

	label := "Commencer le questionnaire"
	if r.ctrl.Snapshot().QuizStarted {
		label = "Revenir à la question"
	}
	footer := components.NewButton(label, true, nil).View()
	if r.errMsg != "" {
		footer = theme.Incorrect.Render(r.errMsg)
	}

	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	r.lastPage = visible

	maxOffset := len(lines) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if r.offset > maxOffset {
		r.offset = maxOffset
	}
	end := r.offset + visible
	if end > len(lines) {
		end = len(lines)
	}

	content := strings.Join(lines[r.offset:end], "\n")
	page := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
	return page + "\n\n" + lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(footer)
}

func (r *ReadingScreen) KeyHints() []layout.KeyHint {
	action := "Questions"
	if r.ctrl.Snapshot().QuizStarted {
		action = "Retour à la question"
	}
	return []layout.KeyHint{
		{Key: "↑/↓", Description: "Défiler"},
		{Key: "Entrée", Description: action},
		{Key: "Ctrl+C", Description: "Quitter"},
	}
}

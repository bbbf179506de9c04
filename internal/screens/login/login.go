// Package login asks the learner for a first and last name before the story
// is shown.
package login

import (
	"errors"
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

const (
	nameMaxLen   = 40
	inputWidth   = 30
	msgMissing   = "Veuillez saisir votre prénom et votre nom."
	msgCantStart = "Impossible de démarrer la session."
)

// LoginScreen collects the learner profile.
type LoginScreen struct {
	ctrl        *quiz.Controller
	nextFactory func() screen.Screen

	first   components.TextInput
	last    components.TextInput
	focused int
	errMsg  string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates the login screen. nextFactory builds the screen shown once the
// profile is accepted.
func New(ctrl *quiz.Controller, nextFactory func() screen.Screen) *LoginScreen {
	first := components.NewTextInput("Prénom", "ex. Jeanne", nameMaxLen, inputWidth)
	last := components.NewTextInput("Nom   ", "ex. Dupont", nameMaxLen, inputWidth)
	last.Blur()
	return &LoginScreen{
		ctrl:        ctrl,
		nextFactory: nextFactory,
		first:       first,
		last:        last,
	}
}

func (l *LoginScreen) Title() string { return "Connexion" }

func (l *LoginScreen) Init() tea.Cmd {
	return l.first.Init()
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return l, nil
	}

	switch key.String() {
	case "tab", "shift+tab", "up", "down":
		return l, l.toggleFocus()
	case "enter":
		if l.focused == 0 && l.last.Blank() {
			return l, l.toggleFocus()
		}
		return l, l.submit()
	}

	var cmd tea.Cmd
	if l.focused == 0 {
		l.first, cmd = l.first.Update(msg)
	} else {
		l.last, cmd = l.last.Update(msg)
	}
	l.errMsg = ""
	return l, cmd
}

func (l *LoginScreen) toggleFocus() tea.Cmd {
	if l.focused == 0 {
		l.focused = 1
		l.first.Blur()
		return l.last.Focus()
	}
	l.focused = 0
	l.last.Blur()
	return l.first.Focus()
}

func (l *LoginScreen) submit() tea.Cmd {
	err := l.ctrl.Login(l.first.Value(), l.last.Value())
	switch {
	case errors.Is(err, quiz.ErrIncompleteProfile):
		l.errMsg = msgMissing
		return nil
	case err != nil:
		l.errMsg = msgCantStart
		return nil
	}
	next := l.nextFactory()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (l *LoginScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Bienvenue !"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render("Avant de commencer la lecture, présente-toi."))
	b.WriteString("\n\n")
	b.WriteString(l.first.View())
	b.WriteString("\n\n")
	b.WriteString(l.last.View())

	if l.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(l.errMsg))
	}

	card := theme.Card.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Champ suivant"},
		{Key: "Entrée", Description: "Commencer"},
		{Key: "Ctrl+C", Description: "Quitter"},
	}
}

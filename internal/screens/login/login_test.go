package login

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/router"
	"github.com/abhisek/lectura/internal/screen"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "reading" }
func (s *stubScreen) Title() string                          { return "Le texte" }

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newLogin() (*LoginScreen, *quiz.Controller) {
	ctrl := quiz.New(content.Reference(), quiz.Options{})
	return New(ctrl, func() screen.Screen { return &stubScreen{} }), ctrl
}

func TestLoginScreen_Title(t *testing.T) {
	l, _ := newLogin()
	if l.Title() != "Connexion" {
		t.Errorf("Title = %q", l.Title())
	}
}

func TestLoginScreen_BlankNamesRejected(t *testing.T) {
	l, ctrl := newLogin()
	l.focused = 1
	l.first.Blur()
	l.last.Focus()

	_, cmd := l.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("expected no transition with blank names")
	}
	if l.errMsg != msgMissing {
		t.Errorf("errMsg = %q", l.errMsg)
	}
	if ctrl.Snapshot().Phase != quiz.PhaseLogin {
		t.Error("controller left the login phase")
	}
	if !strings.Contains(l.View(80, 24), msgMissing) {
		t.Error("error message not rendered")
	}
}

func TestLoginScreen_EnterOnFirstNameMovesFocus(t *testing.T) {
	l, ctrl := newLogin()
	l.first.Model.SetValue("Jeanne")

	l.Update(specialKey(tea.KeyEnter))
	if l.focused != 1 {
		t.Errorf("focused = %d, want 1", l.focused)
	}
	if ctrl.Snapshot().Phase != quiz.PhaseLogin {
		t.Error("login should wait for the last name")
	}
}

func TestLoginScreen_TabTogglesFocus(t *testing.T) {
	l, _ := newLogin()
	l.Update(specialKey(tea.KeyTab))
	if l.focused != 1 {
		t.Fatalf("focused = %d after tab", l.focused)
	}
	l.Update(specialKey(tea.KeyTab))
	if l.focused != 0 {
		t.Errorf("focused = %d after second tab", l.focused)
	}
}

func TestLoginScreen_Submit(t *testing.T) {
	l, ctrl := newLogin()
	l.first.Model.SetValue("  Jeanne ")
	l.last.Model.SetValue("Dupont")
	l.Update(specialKey(tea.KeyTab))

	_, cmd := l.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected transition command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "Le texte" {
		t.Errorf("next screen = %q", msg.Screen.Title())
	}

	snap := ctrl.Snapshot()
	if snap.Phase != quiz.PhaseReading {
		t.Errorf("phase = %s, want reading", snap.Phase)
	}
	if snap.Profile.FirstName != "Jeanne" || snap.Profile.LastName != "Dupont" {
		t.Errorf("profile = %+v", snap.Profile)
	}
}

func TestLoginScreen_KeyHints(t *testing.T) {
	l, _ := newLogin()
	if len(l.KeyHints()) == 0 {
		t.Error("expected key hints")
	}
}

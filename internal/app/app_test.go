package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/router"
)

func testConfig() Config {
	return Config{
		Bank: content.Reference(),
		Grader: grading.GatewayFunc(func(context.Context, grading.Request) grading.Result {
			return grading.Result{Verdict: grading.VerdictCorrect}
		}),
		SkipWelcome: true,
	}
}

func TestAppModel_StartsOnLogin(t *testing.T) {
	m := newAppModel(testConfig())
	if got := m.router.Active().Title(); got != "Connexion" {
		t.Errorf("active = %q, want Connexion", got)
	}

	m2 := newAppModel(Config{Bank: content.Reference()})
	if got := m2.router.Active().Title(); got != "" {
		t.Errorf("welcome title = %q, want empty", got)
	}
	if m2.Init() == nil {
		t.Error("welcome should start its animation")
	}
}

func TestAppModel_HeaderInfo(t *testing.T) {
	m := newAppModel(testConfig())
	if l, p := m.headerInfo(); l != "" || p != "" {
		t.Errorf("login header = %q %q", l, p)
	}

	if err := m.ctrl.Login("Jeanne", "Dupont"); err != nil {
		t.Fatal(err)
	}
	if l, p := m.headerInfo(); l != "Jeanne Dupont" || p != "" {
		t.Errorf("reading header = %q %q", l, p)
	}

	if err := m.ctrl.StartQuiz(); err != nil {
		t.Fatal(err)
	}
	if _, p := m.headerInfo(); p != "Question 1/10" {
		t.Errorf("quiz progress = %q", p)
	}
}

func TestAppModel_ReplaceScreen(t *testing.T) {
	m := newAppModel(testConfig())
	if err := m.ctrl.Login("Jeanne", "Dupont"); err != nil {
		t.Fatal(err)
	}
	f := &flow{ctrl: m.ctrl}
	updated, _ := m.Update(router.ReplaceScreenMsg{Screen: f.reading()})
	m = updated.(AppModel)
	if got := m.router.Active().Title(); got != "Le texte" {
		t.Errorf("active = %q", got)
	}
}

func TestAppModel_View(t *testing.T) {
	m := newAppModel(testConfig())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(AppModel)

	frame := m.render()
	if !strings.Contains(frame, "Lectura") {
		t.Error("header brand missing")
	}
	if !strings.Contains(frame, "Prénom") {
		t.Error("login form missing")
	}

	small, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(small.(AppModel).render(), "trop petit") {
		t.Error("expected too-small message")
	}
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newAppModel(testConfig())
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

package results

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/remediation"
	"github.com/abhisek/lectura/internal/report"
)

type fakeExporter struct {
	got report.Report
	err error
}

func (f *fakeExporter) Export(w io.Writer, r report.Report) error {
	f.got = r
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "%PDF-fake")
	return err
}

// finished returns a controller that went through every question, getting
// the first one wrong twice and the rest right.
func finished(t *testing.T, rem remediation.Gateway) *quiz.Controller {
	t.Helper()
	calls := 0
	g := grading.GatewayFunc(func(context.Context, grading.Request) grading.Result {
		calls++
		if calls <= 2 {
			return grading.Result{Verdict: grading.VerdictWrong}
		}
		return grading.Result{Verdict: grading.VerdictCorrect}
	})
	ctrl := quiz.New(content.Reference(), quiz.Options{Grader: g, Remediator: rem})
	if err := ctrl.Login("Jeanne", "Dupont"); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.StartQuiz(); err != nil {
		t.Fatal(err)
	}
	for {
		fb, err := ctrl.Submit(context.Background(), "réponse")
		if err != nil {
			t.Fatal(err)
		}
		if fb.Kind == quiz.FeedbackRetry {
			continue
		}
		done, err := ctrl.Advance()
		if err != nil {
			t.Fatal(err)
		}
		if done {
			return ctrl
		}
	}
}

func narrativeGateway(text string) remediation.GatewayFunc {
	return func(context.Context, remediation.Request) (string, error) { return text, nil }
}

func TestResultsScreen_Title(t *testing.T) {
	s := New(finished(t, nil), Options{})
	if s.Title() != "Bilan" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestResultsScreen_Scores(t *testing.T) {
	s := New(finished(t, nil), Options{})
	view := s.View(100, 60)

	for _, want := range []string{"Bonnes réponses : 9/10", "Littérale", "Inférentielle", "Évaluative", "(3/4)", "(4/4)", "(2/2)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResultsScreen_LoadsNarrative(t *testing.T) {
	s := New(finished(t, narrativeGateway("## Bravo\n**Points forts** : attention.")), Options{})
	if !s.loading {
		t.Fatal("expected loading state")
	}
	if !s.menu.Items[0].Disabled {
		t.Error("export should be disabled while the narrative loads")
	}

	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected remediation command")
	}
	s.Update(cmd())

	if s.loading {
		t.Error("still loading")
	}
	view := s.View(100, 60)
	if !strings.Contains(view, "Points forts") || strings.Contains(view, "**") {
		t.Error("narrative should be shown without markdown markers")
	}
}

func TestResultsScreen_NarrativeFallback(t *testing.T) {
	rem := remediation.GatewayFunc(func(context.Context, remediation.Request) (string, error) {
		return "", errors.New("boom")
	})
	s := New(finished(t, rem), Options{})
	s.Update(s.Init()())
	if s.narrative != remediation.MsgFailed {
		t.Errorf("narrative = %q", s.narrative)
	}
}

func TestResultsScreen_CachedNarrativeSkipsRequest(t *testing.T) {
	ctrl := finished(t, narrativeGateway("Déjà prêt."))
	if _, err := ctrl.Remediate(context.Background()); err != nil {
		t.Fatal(err)
	}
	s := New(ctrl, Options{})
	if s.loading || s.Init() != nil {
		t.Error("cached narrative should not be requested again")
	}
}

func TestResultsScreen_Export(t *testing.T) {
	dir := t.TempDir()
	exp := &fakeExporter{}
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	s := New(finished(t, narrativeGateway("Bien.")), Options{
		Exporter:  exp,
		OutputDir: dir,
		Now:       func() time.Time { return date },
	})
	s.Update(s.Init()())

	if s.menu.Items[0].Disabled {
		t.Fatal("export should be enabled once the narrative is loaded")
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected export command")
	}
	msg, ok := cmd().(exportedMsg)
	if !ok {
		t.Fatalf("expected exportedMsg, got %T", cmd())
	}
	if msg.Err != nil {
		t.Fatalf("export: %v", msg.Err)
	}
	s.Update(msg)

	want := filepath.Join(dir, "Bilan_Dupont_Jeanne.pdf")
	if msg.Path != want {
		t.Errorf("path = %q, want %q", msg.Path, want)
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "%PDF-fake" {
		t.Errorf("file = %q, %v", data, err)
	}
	if exp.got.Narrative != "Bien." || !exp.got.Date.Equal(date) {
		t.Errorf("report = %+v", exp.got)
	}
	if !strings.Contains(s.status, "Bilan_Dupont_Jeanne.pdf") || s.statusErr {
		t.Errorf("status = %q", s.status)
	}
}

func TestResultsScreen_ExportError(t *testing.T) {
	exp := &fakeExporter{err: errors.New("disque plein")}
	s := New(finished(t, narrativeGateway("Bien.")), Options{Exporter: exp, OutputDir: t.TempDir()})
	s.Update(s.Init()())

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(cmd())
	if !s.statusErr || !strings.Contains(s.status, "disque plein") {
		t.Errorf("status = %q", s.status)
	}
	if s.menu.Items[0].Disabled {
		t.Error("export should be available again after a failure")
	}
}

func TestResultsScreen_NoExporter(t *testing.T) {
	s := New(finished(t, narrativeGateway("Bien.")), Options{})
	s.Update(s.Init()())
	if !s.menu.Items[0].Disabled {
		t.Error("export should be disabled without an exporter")
	}
}

func TestResultsScreen_Quit(t *testing.T) {
	s := New(finished(t, nil), Options{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestResultsScreen_NotFinished(t *testing.T) {
	ctrl := quiz.New(content.Reference(), quiz.Options{})
	s := New(ctrl, Options{})
	if s.Init() != nil {
		t.Error("no narrative request before the quiz is finished")
	}
	if !strings.Contains(s.View(80, 24), "pas encore disponible") {
		t.Error("expected unavailable message")
	}
}

func TestResultsScreen_KeyHints(t *testing.T) {
	s := New(finished(t, nil), Options{})
	if len(s.KeyHints()) == 0 {
		t.Error("expected key hints")
	}
}

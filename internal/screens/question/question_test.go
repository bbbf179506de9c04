package question

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/router"
	"github.com/abhisek/lectura/internal/screen"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return s.title }
func (s *stubScreen) Title() string                          { return s.title }

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// scripted returns the given verdicts in order, then Correct.
func scripted(verdicts ...grading.Verdict) grading.GatewayFunc {
	i := 0
	return func(context.Context, grading.Request) grading.Result {
		v := grading.VerdictCorrect
		if i < len(verdicts) {
			v = verdicts[i]
		}
		i++
		return grading.Result{Verdict: v, Feedback: "Retour du correcteur."}
	}
}

func newQuestionScreen(t *testing.T, bank *content.Bank, g grading.Gateway) (*QuestionScreen, *quiz.Controller) {
	t.Helper()
	ctrl := quiz.New(bank, quiz.Options{Grader: g})
	if err := ctrl.Login("Jeanne", "Dupont"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := ctrl.StartQuiz(); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	s := New(ctrl,
		func() screen.Screen { return &stubScreen{title: "Le texte"} },
		func() screen.Screen { return &stubScreen{title: "Bilan"} },
	)
	return s, ctrl
}

// graded runs the commands produced by a submission and returns the verdict
// message.
func graded(t *testing.T, cmd tea.Cmd) gradedMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if g, ok := msg.(gradedMsg); ok {
		return g
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if g, ok := c().(gradedMsg); ok {
				return g
			}
		}
	}
	t.Fatalf("no gradedMsg in %T", msg)
	return gradedMsg{}
}

func submit(t *testing.T, s *QuestionScreen, answer string) gradedMsg {
	t.Helper()
	s.input.Model.SetValue(answer)
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if !s.input.Locked() {
		t.Error("input should be locked while grading")
	}
	g := graded(t, cmd)
	s.Update(g)
	return g
}

func TestQuestionScreen_CorrectFirstTry(t *testing.T) {
	s, ctrl := newQuestionScreen(t, content.Reference(), scripted())

	g := submit(t, s, "Une réponse")
	if g.Err != nil {
		t.Fatalf("graded error: %v", g.Err)
	}
	if g.Feedback.Kind != quiz.FeedbackSuccess {
		t.Errorf("kind = %s, want success", g.Feedback.Kind)
	}
	if !s.input.Locked() {
		t.Error("input should stay locked once resolved")
	}
	if !strings.Contains(s.View(100, 30), "question suivante") {
		t.Error("next prompt missing")
	}

	// Enter advances.
	s.Update(specialKey(tea.KeyEnter))
	snap := ctrl.Snapshot()
	if snap.Index != 1 {
		t.Errorf("index = %d, want 1", snap.Index)
	}
	if s.input.Locked() || s.input.Value() != "" {
		t.Error("input should be cleared and unlocked for the next question")
	}
}

func TestQuestionScreen_HintThenReveal(t *testing.T) {
	bank := content.Reference()
	q, _ := bank.At(0)
	s, ctrl := newQuestionScreen(t, bank, scripted(grading.VerdictWrong, grading.VerdictWrong))

	g := submit(t, s, "Mauvaise")
	if g.Feedback.Kind != quiz.FeedbackRetry {
		t.Fatalf("kind = %s, want retry", g.Feedback.Kind)
	}
	if s.input.Locked() || s.input.Value() != "" {
		t.Error("input should be cleared and unlocked after a hint")
	}
	if !strings.Contains(g.Feedback.Message, q.HintSubtle) {
		t.Errorf("hint feedback = %q", g.Feedback.Message)
	}

	g = submit(t, s, "Encore faux")
	if g.Feedback.Kind != quiz.FeedbackFail {
		t.Fatalf("kind = %s, want fail", g.Feedback.Kind)
	}
	if !strings.Contains(g.Feedback.Message, q.CorrectAnswer) {
		t.Errorf("reveal feedback = %q", g.Feedback.Message)
	}
	if ctrl.Snapshot().State != quiz.StateResolvedWrong {
		t.Errorf("state = %s", ctrl.Snapshot().State)
	}
}

func TestQuestionScreen_BlankAnswer(t *testing.T) {
	calls := 0
	g := grading.GatewayFunc(func(context.Context, grading.Request) grading.Result {
		calls++
		return grading.Result{Verdict: grading.VerdictCorrect}
	})
	s, ctrl := newQuestionScreen(t, content.Reference(), g)

	s.input.Model.SetValue("   ")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("expected no command for a blank answer")
	}
	if s.errMsg != msgBlank {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if ctrl.Pending() || calls != 0 {
		t.Error("blank answer must not reach the grader")
	}
}

func TestQuestionScreen_EnterWhilePendingIgnored(t *testing.T) {
	s, ctrl := newQuestionScreen(t, content.Reference(), scripted())

	s.input.Model.SetValue("Réponse")
	_, first := s.Update(specialKey(tea.KeyEnter))
	if !ctrl.Pending() {
		t.Fatal("expected a pending verdict")
	}
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("second enter should be ignored while pending")
	}
	s.Update(graded(t, first))
	if ctrl.Pending() {
		t.Error("verdict should have been applied")
	}
}

func TestQuestionScreen_JumpToText(t *testing.T) {
	s, ctrl := newQuestionScreen(t, content.Reference(), scripted())

	_, cmd := s.Update(specialKey(tea.KeyTab))
	if cmd == nil {
		t.Fatal("expected transition command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok || msg.Screen.Title() != "Le texte" {
		t.Fatalf("unexpected message %#v", msg)
	}
	if ctrl.Snapshot().Phase != quiz.PhaseReading {
		t.Errorf("phase = %s, want reading", ctrl.Snapshot().Phase)
	}
}

func TestQuestionScreen_VerdictLandsWhileReading(t *testing.T) {
	s, ctrl := newQuestionScreen(t, content.Reference(), scripted(grading.VerdictWrong))

	s.input.Model.SetValue("Réponse")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if err := ctrl.JumpToText(); err != nil {
		t.Fatalf("JumpToText: %v", err)
	}

	// The verdict is applied by the command even though the screen is gone.
	graded(t, cmd)
	snap := ctrl.Snapshot()
	if snap.State != quiz.StateHintShown || snap.Pending {
		t.Errorf("state = %s pending = %v", snap.State, snap.Pending)
	}
}

func TestQuestionScreen_LastQuestionGoesToResults(t *testing.T) {
	bank, err := content.NewBank("Titre", "Histoire", nil, []content.Question{
		{ID: 1, Text: "Qui ?", Category: content.CategoryLiteral, CorrectAnswer: "Elle", HintSubtle: "Relis."},
	})
	if err != nil {
		t.Fatal(err)
	}
	s, ctrl := newQuestionScreen(t, bank, scripted())

	submit(t, s, "Elle")
	hints := s.KeyHints()
	if hints[0].Description != "Voir le bilan" {
		t.Errorf("enter hint = %q", hints[0].Description)
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected transition command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok || msg.Screen.Title() != "Bilan" {
		t.Fatalf("unexpected message %#v", msg)
	}
	if ctrl.Snapshot().Phase != quiz.PhaseResults {
		t.Errorf("phase = %s, want results", ctrl.Snapshot().Phase)
	}
}

func TestQuestionScreen_SpinnerStopsWhenIdle(t *testing.T) {
	s, _ := newQuestionScreen(t, content.Reference(), scripted())
	s.spinning = true

	_, cmd := s.Update(spinnerTickMsg{})
	if cmd != nil {
		t.Error("spinner should stop when nothing is pending")
	}
	if s.spinning {
		t.Error("spinning flag not cleared")
	}
}

func TestQuestionScreen_View(t *testing.T) {
	s, _ := newQuestionScreen(t, content.Reference(), scripted())
	view := s.View(100, 30)
	if !strings.Contains(view, "Question 1/10") {
		t.Error("position missing from view")
	}
	if !strings.Contains(view, "Littérale") {
		t.Error("category missing from view")
	}
}

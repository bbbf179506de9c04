// Package question is the question screen: one open-ended question at a time,
// graded remotely, with a hint after the first wrong try.
package question

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/router"
	"github.com/abhisek/lectura/internal/screen"
	"github.com/abhisek/lectura/internal/ui/components"
	"github.com/abhisek/lectura/internal/ui/layout"
)

const (
	answerMaxLen  = 500
	answerWidth   = 60
	spinnerPeriod = 120 * time.Millisecond

	msgBlank     = "Écris une réponse avant de valider."
	msgFinished  = "Le questionnaire est terminé."
	msgAbandoned = "La session a été interrompue."
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// QuestionScreen renders the current question from the controller snapshot.
type QuestionScreen struct {
	ctrl           *quiz.Controller
	readingFactory func() screen.Screen
	resultsFactory func() screen.Screen

	input        components.TextInput
	spinnerFrame int
	spinning     bool
	errMsg       string
}

var _ screen.Screen = (*QuestionScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionScreen)(nil)

// New creates the question screen. readingFactory builds the story screen
// shown on Tab and resultsFactory the screen shown after the last question.
func New(ctrl *quiz.Controller, readingFactory, resultsFactory func() screen.Screen) *QuestionScreen {
	s := &QuestionScreen{
		ctrl:           ctrl,
		readingFactory: readingFactory,
		resultsFactory: resultsFactory,
		input:          components.NewTextInput("", "Ta réponse…", answerMaxLen, answerWidth),
	}
	s.syncInput()
	return s
}

func (s *QuestionScreen) Title() string { return "Questions" }

func (s *QuestionScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.input.Init()}
	if s.ctrl.Pending() {
		cmds = append(cmds, s.startSpinner())
	}
	return tea.Batch(cmds...)
}

func (s *QuestionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		return s.handleGraded(msg)

	case spinnerTickMsg:
		if !s.ctrl.Pending() {
			s.spinning = false
			return s, nil
		}
		s.spinnerFrame = (s.spinnerFrame + 1) % len(spinnerFrames)
		return s, s.tickSpinner()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuestionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if err := s.ctrl.JumpToText(); err != nil {
			s.errMsg = errorText(err)
			return s, nil
		}
		next := s.readingFactory()
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case "enter":
		snap := s.ctrl.Snapshot()
		if snap.Pending {
			return s, nil
		}
		if snap.State.Resolved() {
			return s, s.advance()
		}
		return s, s.submit()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if !s.input.Blank() {
		s.errMsg = ""
	}
	return s, cmd
}

func (s *QuestionScreen) submit() tea.Cmd {
	p, err := s.ctrl.Begin(s.input.Value())
	if err != nil {
		s.errMsg = errorText(err)
		return nil
	}
	s.errMsg = ""
	s.input.Lock(true)
	return tea.Batch(gradeCmd(s.ctrl, p), s.startSpinner())
}

// gradeCmd runs the grading call off the UI loop and applies the verdict to
// the controller before reporting back, so the answer lands even if the
// learner has switched to the story in the meantime.
func gradeCmd(ctrl *quiz.Controller, p *quiz.Pending) tea.Cmd {
	return func() tea.Msg {
		res := p.Run(context.Background())
		fb, err := ctrl.Resolve(p, res)
		return gradedMsg{Feedback: fb, Err: err}
	}
}

func (s *QuestionScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	s.spinning = false
	if msg.Err != nil && !errors.Is(msg.Err, quiz.ErrStale) {
		s.errMsg = errorText(msg.Err)
	}
	if msg.Err == nil && msg.Feedback.Kind == quiz.FeedbackRetry {
		s.input.Reset()
	}
	s.syncInput()
	return s, nil
}

func (s *QuestionScreen) advance() tea.Cmd {
	done, err := s.ctrl.Advance()
	if err != nil {
		s.errMsg = errorText(err)
		return nil
	}
	if done {
		next := s.resultsFactory()
		return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
	s.errMsg = ""
	s.input.Reset()
	s.syncInput()
	return s.input.Focus()
}

// syncInput locks the answer field while a verdict is awaited and once the
// question is resolved.
func (s *QuestionScreen) syncInput() {
	snap := s.ctrl.Snapshot()
	s.input.Lock(snap.Pending || snap.State.Resolved())
}

func (s *QuestionScreen) startSpinner() tea.Cmd {
	if s.spinning {
		return nil
	}
	s.spinning = true
	return s.tickSpinner()
}

func (s *QuestionScreen) tickSpinner() tea.Cmd {
	return tea.Tick(spinnerPeriod, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func errorText(err error) string {
	switch {
	case errors.Is(err, quiz.ErrBlankAnswer):
		return msgBlank
	case errors.Is(err, quiz.ErrFinished):
		return msgFinished
	case errors.Is(err, quiz.ErrAbandoned):
		return msgAbandoned
	default:
		return "Action impossible pour le moment."
	}
}

func (s *QuestionScreen) KeyHints() []layout.KeyHint {
	snap := s.ctrl.Snapshot()
	enter := "Valider"
	if snap.State.Resolved() {
		enter = "Question suivante"
		if snap.Index+1 >= snap.Total {
			enter = "Voir le bilan"
		}
	}
	return []layout.KeyHint{
		{Key: "Entrée", Description: enter},
		{Key: "Tab", Description: "Relire le texte"},
		{Key: "Ctrl+C", Description: "Quitter"},
	}
}

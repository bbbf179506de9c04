package app

import (
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/remediation"
	"github.com/abhisek/lectura/internal/report"
	"github.com/abhisek/lectura/internal/router"
	"github.com/abhisek/lectura/internal/screen"
	"github.com/abhisek/lectura/internal/screens/login"
	"github.com/abhisek/lectura/internal/screens/question"
	"github.com/abhisek/lectura/internal/screens/reading"
	"github.com/abhisek/lectura/internal/screens/results"
	"github.com/abhisek/lectura/internal/screens/welcome"
	"github.com/abhisek/lectura/internal/ui/layout"
)

// Config holds everything the terminal app needs to run one session.
type Config struct {
	Bank       *content.Bank
	Grader     grading.Gateway
	Remediator remediation.Gateway

	// Recorder and Exporter are optional.
	Recorder quiz.Recorder
	Exporter report.Exporter

	// OutputDir receives exported PDF reports.
	OutputDir string

	GradingTimeout     time.Duration
	RemediationTimeout time.Duration

	// SkipWelcome starts directly on the login screen.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	ctrl   *quiz.Controller
	width  int
	height int
}

// flow builds the screens of one session. Each factory closes over the same
// controller so every screen renders the same state.
type flow struct {
	ctrl *quiz.Controller
	cfg  Config
}

func (f *flow) login() screen.Screen { return login.New(f.ctrl, f.reading) }

func (f *flow) reading() screen.Screen { return reading.New(f.ctrl, f.question) }

func (f *flow) question() screen.Screen {
	return question.New(f.ctrl, f.reading, f.results)
}

func (f *flow) results() screen.Screen {
	return results.New(f.ctrl, results.Options{
		Exporter:  f.cfg.Exporter,
		OutputDir: f.cfg.OutputDir,
	})
}

// newAppModel creates an AppModel starting on the welcome screen.
func newAppModel(cfg Config) AppModel {
	ctrl := quiz.New(cfg.Bank, quiz.Options{
		Grader:             cfg.Grader,
		Remediator:         cfg.Remediator,
		Recorder:           cfg.Recorder,
		GradingTimeout:     cfg.GradingTimeout,
		RemediationTimeout: cfg.RemediationTimeout,
	})
	f := &flow{ctrl: ctrl, cfg: cfg}

	var first screen.Screen = welcome.New(f.login)
	if cfg.SkipWelcome {
		first = f.login()
	}
	return AppModel{
		router: router.New(first),
		ctrl:   ctrl,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// headerInfo returns the learner name and progress shown in the header.
func (m AppModel) headerInfo() (learner, progress string) {
	snap := m.ctrl.Snapshot()
	switch snap.Phase {
	case quiz.PhaseLogin:
		return "", ""
	case quiz.PhaseResults:
		return snap.Profile.FullName(), "Terminé"
	}
	learner = snap.Profile.FullName()
	if snap.QuizStarted {
		progress = fmt.Sprintf("Question %d/%d", snap.Index+1, snap.Total)
	}
	return learner, progress
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render composes the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	learner, progress := m.headerInfo()
	header := layout.RenderHeader(title, learner, progress, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Entrée", Description: "Valider"},
		{Key: "Ctrl+C", Description: "Quitter"},
	}
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	}
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program. A session left before the results is
// recorded as abandoned.
func Run(cfg Config) error {
	model := newAppModel(cfg)
	defer func() {
		if model.ctrl.Snapshot().Phase != quiz.PhaseResults {
			model.ctrl.Abandon()
		}
	}()

	p := tea.NewProgram(model)
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur lors de l'exécution :", err)
		return err
	}
	return nil
}

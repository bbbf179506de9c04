// Package results shows the per-category scores, the remediation narrative
// and lets the learner export the PDF report.
package results

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/report"
	"github.com/abhisek/lectura/internal/screen"
	"github.com/abhisek/lectura/internal/ui/components"
	"github.com/abhisek/lectura/internal/ui/layout"
	"github.com/abhisek/lectura/internal/ui/theme"
)

const (
	labelExport = "Exporter le bilan (PDF)"
	labelQuit   = "Quitter"
)

// narrativeMsg carries the remediation narrative, or its fallback.
type narrativeMsg struct {
	Text string
}

// exportedMsg reports the outcome of a PDF export.
type exportedMsg struct {
	Path string
	Err  error
}

// Options configures the results screen.
type Options struct {
	// Exporter writes the report; nil disables export.
	Exporter report.Exporter
	// OutputDir receives exported reports. Empty means the working directory.
	OutputDir string
	// Now stamps the report date. Defaults to time.Now.
	Now func() time.Time
}

// ResultsScreen displays the session results.
type ResultsScreen struct {
	ctrl *quiz.Controller
	opts Options

	results   quiz.Results
	err       error
	narrative string
	loading   bool
	exporting bool
	status    string
	statusErr bool
	scroll    int
	menu      components.Menu
	choice    int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates the results screen for a finished controller.
func New(ctrl *quiz.Controller, opts Options) *ResultsScreen {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	res, err := ctrl.Results()
	s := &ResultsScreen{
		ctrl:    ctrl,
		opts:    opts,
		results: res,
		err:     err,
	}
	if text, ok := ctrl.Narrative(); ok {
		s.narrative = text
	} else if err == nil {
		s.loading = true
	}
	s.buildMenu()
	return s
}

func (s *ResultsScreen) Init() tea.Cmd {
	if !s.loading {
		return nil
	}
	ctrl := s.ctrl
	return func() tea.Msg {
		text, err := ctrl.Remediate(context.Background())
		if err != nil {
			text = ""
		}
		return narrativeMsg{Text: text}
	}
}

func (s *ResultsScreen) Title() string {
	return "Bilan"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑/↓", Description: "Choisir"},
		{Key: "PgUp/PgDn", Description: "Défiler"},
		{Key: "Entrée", Description: "Valider"},
		{Key: "q", Description: "Quitter"},
	}
}

// buildMenu refreshes which items are enabled, keeping the learner's choice
// when it is still selectable.
func (s *ResultsScreen) buildMenu() {
	s.menu = components.NewMenu([]components.MenuItem{
		{
			Label:    labelExport,
			Action:   s.export,
			Disabled: s.loading || s.exporting || s.opts.Exporter == nil || s.err != nil,
		},
		{Label: labelQuit, Action: func() tea.Cmd { return tea.Quit }},
	})
	if s.choice < len(s.menu.Items) && !s.menu.Items[s.choice].Disabled {
		s.menu.Selected = s.choice
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case narrativeMsg:
		s.loading = false
		s.narrative = msg.Text
		s.buildMenu()
		return s, nil

	case exportedMsg:
		s.exporting = false
		if msg.Err != nil {
			s.status = "Échec de l'export : " + msg.Err.Error()
			s.statusErr = true
		} else {
			s.status = "Bilan enregistré : " + msg.Path
			s.statusErr = false
		}
		s.buildMenu()
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "pgdown":
			s.scroll += 5
			return s, nil
		case "pgup":
			s.scroll = max(s.scroll-5, 0)
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		s.choice = s.menu.Selected
		s.buildMenu()
		return s, cmd
	}
	return s, nil
}

func (s *ResultsScreen) export() tea.Cmd {
	if s.opts.Exporter == nil || s.loading || s.exporting {
		return nil
	}
	s.exporting = true
	s.buildMenu()

	rep := report.FromResults(s.results, s.narrative, s.opts.Now())
	path := filepath.Join(s.opts.OutputDir, report.FileName(s.results.Profile))
	exp := s.opts.Exporter
	return func() tea.Msg {
		return exportedMsg{Path: path, Err: writeReport(exp, path, rep)}
	}
}

func writeReport(exp report.Exporter, path string, rep report.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := exp.Export(f, rep); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (s *ResultsScreen) View(width, height int) string {
	if s.err != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render("Le bilan n'est pas encore disponible."))
	}
	res := s.results

	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}
	textWidth := min(width-8, 80)

	var b strings.Builder
	b.WriteString(center(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("Bravo %s, questionnaire terminé !", res.Profile.FirstName))))
	b.WriteString("\n\n")
	b.WriteString(center(lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(fmt.Sprintf("Bonnes réponses : %d/%d", res.CorrectAnswers, res.TotalQuestions))))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(textWidth, 0)))
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Résultats par catégorie")))
	b.WriteString("\n")
	b.WriteString(center(divider))
	b.WriteString("\n\n")

	rows := make([]components.ChartRow, 0, len(res.Scores))
	for _, sc := range res.Scores {
		rows = append(rows, components.ChartRow{
			Label:   sc.Category.Label(),
			Percent: sc.Percentage,
			Detail:  fmt.Sprintf("(%d/%d)", sc.Correct, sc.Total),
		})
	}
	b.WriteString(center(components.BarChart(rows, textWidth)))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Synthèse des acquis et des difficultés")))
	b.WriteString("\n")
	b.WriteString(center(divider))
	b.WriteString("\n\n")

	menu := s.menu.View()
	status := ""
	if s.status != "" {
		style := theme.Correct
		if s.statusErr {
			style = theme.Incorrect
		}
		status = center(style.Render(s.status))
	}

	used := lipgloss.Height(b.String()) + lipgloss.Height(menu) + 2
	if status != "" {
		used += lipgloss.Height(status) + 1
	}
	avail := max(height-used, 3)

	if s.loading {
		b.WriteString(center(theme.Hint.Render("Analyse de tes réponses en cours…")))
		b.WriteString("\n")
	} else {
		b.WriteString(s.renderNarrative(textWidth, avail, center))
	}
	b.WriteString("\n")
	b.WriteString(center(menu))
	if status != "" {
		b.WriteString("\n")
		b.WriteString(status)
	}
	return b.String()
}

func (s *ResultsScreen) renderNarrative(width, lines int, center func(string) string) string {
	text := strings.TrimSpace(report.StripMarkdown(s.narrative))
	wrapped := lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(text)
	all := strings.Split(wrapped, "\n")

	maxScroll := max(len(all)-lines, 0)
	if s.scroll > maxScroll {
		s.scroll = maxScroll
	}
	end := min(s.scroll+lines, len(all))
	return center(strings.Join(all[s.scroll:end], "\n")) + "\n"
}

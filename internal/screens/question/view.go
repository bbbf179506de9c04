package question

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/ui/theme"
)

func (s *QuestionScreen) View(width, height int) string {
	snap := s.ctrl.Snapshot()
	if snap.Question == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Aucune question."))
	}
	q := snap.Question

	var b strings.Builder

	// Category and position line.
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + q.Category.Label())
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Question %d/%d  essai %d/%d",
			snap.Index+1, snap.Total, tryNumber(snap), quiz.MaxTries))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	textWidth := min(width-8, 80)
	questionStyle := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(questionStyle.Render(lipgloss.NewStyle().Width(textWidth).Render(q.Text)))
	b.WriteString("\n\n")

	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	b.WriteString(center.Render(s.input.View()))
	b.WriteString("\n\n")

	switch {
	case snap.Pending:
		spin := lipgloss.NewStyle().Foreground(theme.Accent).Render(spinnerFrames[s.spinnerFrame])
		b.WriteString(center.Render(spin + " " + theme.Hint.Render("Correction en cours…")))
	case snap.Feedback != nil:
		b.WriteString(center.Render(lipgloss.NewStyle().Width(textWidth).Render(renderFeedback(*snap.Feedback))))
	}

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(center.Render(theme.Incorrect.Render(s.errMsg)))
	}

	if snap.State.Resolved() {
		b.WriteString("\n\n")
		next := "Entrée : question suivante"
		if snap.Index+1 >= snap.Total {
			next = "Entrée : voir le bilan"
		}
		b.WriteString(center.Render(theme.Hint.Render(next)))
	}

	return b.String()
}

// tryNumber is the try the learner is on, counting the one in flight.
func tryNumber(snap quiz.Snapshot) int {
	n := snap.TryState.AttemptsSoFar
	if !snap.Pending && !snap.State.Resolved() {
		n++
	}
	return min(max(n, 1), quiz.MaxTries)
}

func renderFeedback(fb quiz.Feedback) string {
	switch fb.Kind {
	case quiz.FeedbackSuccess:
		return theme.Correct.Render("✓ " + fb.Message)
	case quiz.FeedbackRetry:
		return theme.Retry.Render("💡 " + fb.Message)
	default:
		return theme.Incorrect.Render("✗ " + fb.Message)
	}
}

package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lectura/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64 // 0..1
	ShowPercent bool
	Width       int

	// Fill overrides the filled colour; nil means theme.Secondary.
	Fill color.Color
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	filledStr := lipgloss.NewStyle().
		Background(fill).
		Render(strings.Repeat(" ", filled))

	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	result += filledStr + emptyStr

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100+0.5)))
	}

	return result
}

// PassThreshold is the score from which a chart bar turns green.
const PassThreshold = 50.0

// BarColor returns green for a passing percentage and red otherwise.
func BarColor(percent float64) color.Color {
	if percent >= PassThreshold {
		return theme.Success
	}
	return theme.Error
}

// ChartRow is one bar of a BarChart.
type ChartRow struct {
	Label   string
	Percent float64 // 0..100
	Detail  string
}

// BarChart renders one coloured bar per row with aligned labels.
func BarChart(rows []ChartRow, width int) string {
	labelWidth := 0
	for _, r := range rows {
		if w := lipgloss.Width(r.Label); w > labelWidth {
			labelWidth = w
		}
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		label := r.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(r.Label))
		bar := ProgressBar{
			Label:       label,
			Percent:     r.Percent / 100,
			ShowPercent: true,
			Width:       width - lipgloss.Width(r.Detail) - 2,
			Fill:        BarColor(r.Percent),
		}
		line := bar.View()
		if r.Detail != "" {
			line += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(r.Detail)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Package report renders the end-of-quiz assessment ("bilan") as a PDF.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abhisek/lectura/internal/quiz"
)

// Report is everything the exporter prints. It is assembled once the quiz
// is finished and never read back.
type Report struct {
	Title     string
	Profile   quiz.Profile
	Date      time.Time
	Scores    []quiz.CategoryScore
	Narrative string
}

// FromResults builds a report from finished quiz results.
func FromResults(res quiz.Results, narrative string, date time.Time) Report {
	return Report{
		Title:     res.Title,
		Profile:   res.Profile,
		Date:      date,
		Scores:    res.Scores,
		Narrative: narrative,
	}
}

// Exporter writes a report artifact.
type Exporter interface {
	Export(w io.Writer, r Report) error
}

// FileName returns the artifact name for a learner: Bilan_<Last>_<First>.pdf.
func FileName(p quiz.Profile) string {
	return fmt.Sprintf("Bilan_%s_%s.pdf", safeName(p.LastName), safeName(p.FirstName))
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '"', 0:
			return '-'
		}
		return r
	}, strings.TrimSpace(s))
}

// StripMarkdown removes heading and emphasis markers.
func StripMarkdown(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '#' || r == '*' {
			return -1
		}
		return r
	}, s)
}

// Heading returns the document title line.
func Heading(title string) string {
	return "Bilan de Compréhension du texte : " + title
}

// ScoreLine formats one category result, e.g. "- Littérale : 75% (3/4)".
func ScoreLine(s quiz.CategoryScore) string {
	return fmt.Sprintf("- %s : %d%% (%d/%d)", s.Category.Label(), s.RoundedPercent(), s.Correct, s.Total)
}

// FormatDate renders d the French way (dd/mm/yyyy).
func FormatDate(d time.Time) string {
	return d.Format("02/01/2006")
}

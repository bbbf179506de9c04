package quiz

import (
	"math"

	"github.com/abhisek/lectura/internal/content"
)

// CategoryScore is the derived result for one category.
type CategoryScore struct {
	Category   content.Category `json:"category"`
	Label      string           `json:"label"`
	Total      int              `json:"total"`
	Correct    int              `json:"correct"`
	Percentage float64          `json:"percentage"`
}

// RoundedPercent is Percentage rounded to the nearest integer for display.
func (s CategoryScore) RoundedPercent() int {
	return int(math.Round(s.Percentage))
}

// Aggregate reduces attempts to one score per category, always in the order
// Literal, Inferential, Evaluative. Totals come from the bank, so unanswered
// questions count as not correct; an empty category scores 0. Only the first
// record of each question id is counted and records for ids outside the bank
// are ignored.
func Aggregate(bank *content.Bank, attempts []AttemptRecord) []CategoryScore {
	correct := make(map[int]bool, len(attempts))
	seen := make(map[int]bool, len(attempts))
	for _, a := range attempts {
		if seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		correct[a.QuestionID] = a.Outcome == OutcomeCorrect
	}

	totals := make(map[content.Category]int)
	hits := make(map[content.Category]int)
	for _, q := range bank.Questions() {
		totals[q.Category]++
		if correct[q.ID] {
			hits[q.Category]++
		}
	}

	cats := content.Categories()
	scores := make([]CategoryScore, 0, len(cats))
	for _, c := range cats {
		s := CategoryScore{Category: c, Label: c.Label(), Total: totals[c], Correct: hits[c]}
		if s.Total > 0 {
			s.Percentage = float64(s.Correct) / float64(s.Total) * 100
		}
		scores = append(scores, s)
	}
	return scores
}

// CorrectCount returns the number of correct records.
func CorrectCount(attempts []AttemptRecord) int {
	n := 0
	for _, a := range attempts {
		if a.Outcome == OutcomeCorrect {
			n++
		}
	}
	return n
}

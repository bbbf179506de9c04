package content

import (
	"errors"
	"fmt"
	"strings"
)

// validateQuestions performs the structural checks on a question list.
// Returns a combined error describing all problems found, or nil if valid.
func validateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return errors.New("content: no questions")
	}

	var errs []string
	seen := make(map[int]bool, len(questions))
	for i, q := range questions {
		if seen[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %d", q.ID))
		}
		seen[q.ID] = true

		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %d (#%d) has no text", q.ID, i+1))
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			errs = append(errs, fmt.Sprintf("question %d has no correct answer", q.ID))
		}
		if strings.TrimSpace(q.HintSubtle) == "" {
			errs = append(errs, fmt.Sprintf("question %d has no subtle hint", q.ID))
		}
		if !q.Category.Valid() {
			errs = append(errs, fmt.Sprintf("question %d has invalid category %d", q.ID, int(q.Category)))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("content validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

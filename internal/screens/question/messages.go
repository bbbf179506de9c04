package question

import (
	"time"

	"github.com/abhisek/lectura/internal/quiz"
)

// gradedMsg is sent once a submission's verdict has been applied.
type gradedMsg struct {
	Feedback quiz.Feedback
	Err      error
}

// spinnerTickMsg is sent at short intervals to animate the grading spinner.
type spinnerTickMsg time.Time

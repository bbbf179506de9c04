package quiz

import (
	"strings"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/grading"
)

// Tracker is the try-state machine of a single question:
//
//	Fresh ──submit──▶ AwaitingVerdict ──correct──▶ ResolvedCorrect
//	                        │
//	                        ├─miss, 1st try──▶ HintShown ──submit──▶ AwaitingVerdict
//	                        └─miss, 2nd try──▶ ResolvedWrong
//
// A failed grading call arrives as a degraded Wrong result and consumes a try
// like any other miss, so a question always resolves within MaxTries
// submissions.
type Tracker struct {
	question    content.Question
	state       State
	tries       int
	lastVerdict *grading.Verdict
	answer      string
	feedback    *Feedback
	record      *AttemptRecord
}

// NewTracker returns a Fresh tracker for q.
func NewTracker(q content.Question) *Tracker {
	return &Tracker{question: q}
}

func (t *Tracker) Question() content.Question { return t.question }
func (t *Tracker) State() State               { return t.state }

// TryState returns a copy of the submission counters.
func (t *Tracker) TryState() TryState {
	ts := TryState{AttemptsSoFar: t.tries}
	if t.lastVerdict != nil {
		v := *t.lastVerdict
		ts.LastVerdict = &v
	}
	return ts
}

// Feedback returns the message for the latest verdict, if any.
func (t *Tracker) Feedback() (Feedback, bool) {
	if t.feedback == nil {
		return Feedback{}, false
	}
	return *t.feedback, true
}

// Record returns the attempt record once the question is resolved.
func (t *Tracker) Record() (AttemptRecord, bool) {
	if t.record == nil {
		return AttemptRecord{}, false
	}
	return *t.record, true
}

// Answer returns the text of the latest submission.
func (t *Tracker) Answer() string { return t.answer }

// Begin starts a submission. Blank answers are rejected without consuming a
// try.
func (t *Tracker) Begin(answer string) error {
	switch {
	case t.state == StateAwaitingVerdict:
		return ErrPending
	case t.state.Resolved():
		return ErrResolved
	case strings.TrimSpace(answer) == "":
		return ErrBlankAnswer
	}
	t.answer = answer
	t.state = StateAwaitingVerdict
	return nil
}

// Apply consumes one try with the given verdict. It returns the record when
// the transition is terminal.
func (t *Tracker) Apply(res grading.Result) (Feedback, *AttemptRecord, error) {
	if t.state != StateAwaitingVerdict {
		return Feedback{}, nil, ErrNoPending
	}

	t.tries++
	v := res.Verdict
	t.lastVerdict = &v

	var fb Feedback
	switch {
	case res.Verdict == grading.VerdictCorrect && !res.Degraded:
		t.state = StateResolvedCorrect
		fb = successFeedback(res)
		t.resolve(OutcomeCorrect)
	case t.tries < MaxTries:
		t.state = StateHintShown
		fb = hintFeedback(res, t.question.HintSubtle)
	default:
		t.state = StateResolvedWrong
		fb = revealFeedback(res, t.question.CorrectAnswer)
		t.resolve(OutcomeWrong)
	}
	t.feedback = &fb

	if t.record != nil {
		rec := *t.record
		return fb, &rec, nil
	}
	return fb, nil, nil
}

func (t *Tracker) resolve(outcome Outcome) {
	t.record = &AttemptRecord{
		QuestionID:    t.question.ID,
		TriesUsed:     t.tries,
		Outcome:       outcome,
		LearnerAnswer: t.answer,
	}
}

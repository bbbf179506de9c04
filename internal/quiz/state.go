// Package quiz sequences a learner through a content bank under the two-try
// grading policy and reduces the outcome to per-category scores.
package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/lectura/internal/grading"
)

// Errors returned by Tracker and Controller operations. None of them change
// state.
var (
	ErrBlankAnswer       = errors.New("quiz: blank answer")
	ErrPending           = errors.New("quiz: a verdict is pending")
	ErrNoPending         = errors.New("quiz: no submission awaiting a verdict")
	ErrNotResolved       = errors.New("quiz: current question is not resolved")
	ErrResolved          = errors.New("quiz: question already resolved")
	ErrFinished          = errors.New("quiz: quiz already finished")
	ErrStale             = errors.New("quiz: stale submission")
	ErrWrongPhase        = errors.New("quiz: operation not allowed in this phase")
	ErrAbandoned         = errors.New("quiz: session abandoned")
	ErrIncompleteProfile = errors.New("quiz: first and last name are required")
)

// State is the try-state of one question.
type State int

const (
	StateFresh State = iota
	StateAwaitingVerdict
	StateHintShown
	StateResolvedCorrect
	StateResolvedWrong
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateAwaitingVerdict:
		return "awaiting_verdict"
	case StateHintShown:
		return "hint_shown"
	case StateResolvedCorrect:
		return "resolved_correct"
	case StateResolvedWrong:
		return "resolved_wrong"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Resolved reports whether s is terminal for its question.
func (s State) Resolved() bool {
	return s == StateResolvedCorrect || s == StateResolvedWrong
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for c := StateFresh; c <= StateResolvedWrong; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Outcome is the final result of one question.
type Outcome int

const (
	OutcomeWrong Outcome = iota
	OutcomeCorrect
)

func (o Outcome) String() string {
	if o == OutcomeCorrect {
		return "correct"
	}
	return "wrong"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "correct":
		*o = OutcomeCorrect
	case "wrong":
		*o = OutcomeWrong
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// MaxTries is the number of submissions allowed per question.
const MaxTries = 2

// AttemptRecord is the finalized outcome of one question. It is created
// exactly once per question and never mutated afterwards.
type AttemptRecord struct {
	QuestionID    int     `json:"questionId"`
	TriesUsed     int     `json:"triesUsed"`
	Outcome       Outcome `json:"outcome"`
	LearnerAnswer string  `json:"learnerAnswer"`
}

// TryState is the transient per-question submission state.
type TryState struct {
	AttemptsSoFar int              `json:"attemptsSoFar"`
	LastVerdict   *grading.Verdict `json:"lastVerdict,omitempty"`
}

// FeedbackKind drives how feedback is coloured.
type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackRetry   FeedbackKind = "retry"
	FeedbackFail    FeedbackKind = "fail"
)

// Feedback is the message shown after a verdict.
type Feedback struct {
	Kind     FeedbackKind    `json:"kind"`
	Message  string          `json:"message"`
	Verdict  grading.Verdict `json:"verdict"`
	Degraded bool            `json:"degraded,omitempty"`
}

// Profile identifies the learner for display and report naming.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// NewProfile trims both names and requires them to be non-empty.
func NewProfile(first, last string) (Profile, error) {
	p := Profile{FirstName: strings.TrimSpace(first), LastName: strings.TrimSpace(last)}
	if p.FirstName == "" || p.LastName == "" {
		return Profile{}, ErrIncompleteProfile
	}
	return p, nil
}

// FullName returns "First Last".
func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

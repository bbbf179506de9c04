// Package grading turns a learner's free-text answer into a tri-state
// verdict. Gateways never fail: transport and parsing problems surface as a
// Wrong-tier result carrying a labelled fallback message.
package grading

import (
	"context"
	"fmt"
	"strings"
)

// Verdict is the outcome of grading one submission.
type Verdict int

const (
	VerdictWrong Verdict = iota
	VerdictPartial
	VerdictCorrect
)

// String returns the lower-case wire form.
func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictPartial:
		return "partial"
	case VerdictWrong:
		return "wrong"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// ParseVerdict accepts CORRECT, PARTIAL or WRONG in any case.
func ParseVerdict(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "correct":
		return VerdictCorrect, nil
	case "partial":
		return VerdictPartial, nil
	case "wrong":
		return VerdictWrong, nil
	}
	return VerdictWrong, fmt.Errorf("unknown verdict %q", s)
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	parsed, err := ParseVerdict(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Learner-facing fallback messages.
const (
	MsgUnavailable     = "Analyse indisponible. Le service d'évaluation a rencontré un problème."
	MsgIncompleteInput = "Données d'entrée incomplètes."
	MsgMissingFeedback = "Feedback manquant."
	MsgServerError     = "Erreur Serveur Interne : La fonction n'a pas pu s'exécuter."
)

// Request is one answer to grade.
type Request struct {
	QuestionText  string
	ModelAnswer   string
	LearnerAnswer string
}

// Complete reports whether every field needed for grading is present.
func (r Request) Complete() bool {
	return strings.TrimSpace(r.QuestionText) != "" &&
		strings.TrimSpace(r.ModelAnswer) != "" &&
		strings.TrimSpace(r.LearnerAnswer) != ""
}

// Result is the verdict for one submission.
type Result struct {
	Verdict  Verdict
	Feedback string

	// Degraded marks a fallback produced because grading could not run.
	Degraded bool
}

// Unavailable is the result substituted for any grading failure.
func Unavailable() Result {
	return Result{Verdict: VerdictWrong, Feedback: MsgUnavailable, Degraded: true}
}

// Incomplete is the result for a request missing required fields.
func Incomplete() Result {
	return Result{Verdict: VerdictWrong, Feedback: MsgIncompleteInput, Degraded: true}
}

// Gateway grades answers. Implementations must return a Result for every
// call, including on failure or context expiry.
type Gateway interface {
	Grade(ctx context.Context, req Request) Result
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, req Request) Result

func (f GatewayFunc) Grade(ctx context.Context, req Request) Result {
	return f(ctx, req)
}

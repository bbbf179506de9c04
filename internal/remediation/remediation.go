// Package remediation produces the coaching narrative shown after a quiz.
package remediation

import (
	"context"
	"errors"
)

// Learner-facing messages.
const (
	MsgNoAttempts  = "Aucune tentative n'a été enregistrée pour générer le bilan."
	MsgEmpty       = "Impossible de générer le bilan."
	MsgFailed      = "Une erreur est survenue lors de la création du bilan. Le service d'analyse a rencontré un problème."
	MsgUnreachable = "Échec de la connexion au serveur pour générer le bilan. Veuillez réessayer plus tard."
	MsgServerError = "Erreur Serveur Interne : La fonction Remédiation n'a pas pu s'exécuter."
)

var (
	// ErrUnreachable wraps failures to reach a remote remediation endpoint.
	ErrUnreachable = errors.New("remediation server unreachable")
	// ErrRemoteFailed is returned when a remote endpoint was reached but
	// could not generate a narrative.
	ErrRemoteFailed = errors.New("remediation server failed")
)

// Attempt is one finalized question outcome, denormalized with the question
// text and category label for prompt context.
type Attempt struct {
	QuestionID    int    `json:"questionId"`
	QuestionText  string `json:"questionText,omitempty"`
	Category      string `json:"category,omitempty"`
	Status        string `json:"status"` // "correct" or "wrong"
	Tries         int    `json:"attempts"`
	LearnerAnswer string `json:"userResponse"`
}

// Request carries the full ordered attempt history of a session.
type Request struct {
	Attempts []Attempt
}

// Gateway generates a remediation narrative. The narrative may contain
// markdown and is passed through verbatim.
type Gateway interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, req Request) (string, error)

func (f GatewayFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Fallback returns the message shown in place of a narrative when
// generation failed with err.
func Fallback(err error) string {
	if errors.Is(err, ErrUnreachable) {
		return MsgUnreachable
	}
	return MsgFailed
}

package quiz

import (
	"fmt"

	"github.com/abhisek/lectura/internal/grading"
)

const (
	msgCorrectPrefix   = "Bonne réponse. "
	msgWrongPrefix     = "Votre réponse est incorrecte. "
	msgPartialPrefix   = "Votre réponse est incomplète. "
	msgHintPrefix      = "Voici un indice pour vous aider : "
	msgRevealFormat    = "Réponse incorrecte. La bonne réponse est : \"%s\""
	msgRevealDegFormat = "%s Réponse incorrecte. La bonne réponse est : \"%s\""
)

func successFeedback(res grading.Result) Feedback {
	return Feedback{
		Kind:    FeedbackSuccess,
		Message: msgCorrectPrefix + res.Feedback,
		Verdict: res.Verdict,
	}
}

// hintFeedback is shown after a first non-correct verdict. A degraded result
// replaces the verdict sentence with the failure message.
func hintFeedback(res grading.Result, hint string) Feedback {
	lead := msgWrongPrefix
	switch {
	case res.Degraded:
		lead = res.Feedback + " "
	case res.Verdict == grading.VerdictPartial:
		lead = msgPartialPrefix
	}
	return Feedback{
		Kind:     FeedbackRetry,
		Message:  lead + msgHintPrefix + hint,
		Verdict:  res.Verdict,
		Degraded: res.Degraded,
	}
}

// revealFeedback is shown after the second non-correct verdict and always
// contains the literal model answer.
func revealFeedback(res grading.Result, correctAnswer string) Feedback {
	msg := fmt.Sprintf(msgRevealFormat, correctAnswer)
	if res.Degraded {
		msg = fmt.Sprintf(msgRevealDegFormat, res.Feedback, correctAnswer)
	}
	return Feedback{
		Kind:     FeedbackFail,
		Message:  msg,
		Verdict:  res.Verdict,
		Degraded: res.Degraded,
	}
}

package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/remediation"
)

// scriptedGrader returns verdicts in order and counts calls.
type scriptedGrader struct {
	mu       sync.Mutex
	results  []grading.Result
	requests []grading.Request
}

func (g *scriptedGrader) Grade(_ context.Context, req grading.Request) grading.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if len(g.results) == 0 {
		return grading.Result{Verdict: grading.VerdictWrong, Feedback: "non"}
	}
	r := g.results[0]
	g.results = g.results[1:]
	return r
}

func (g *scriptedGrader) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func correct(fb string) grading.Result {
	return grading.Result{Verdict: grading.VerdictCorrect, Feedback: fb}
}

func wrong(fb string) grading.Result {
	return grading.Result{Verdict: grading.VerdictWrong, Feedback: fb}
}

// tenQuestionBank mirrors the reference layout: 4 literal, 4 inferential,
// 2 evaluative.
func tenQuestionBank(t *testing.T) *content.Bank {
	t.Helper()
	var qs []content.Question
	for i := 1; i <= 10; i++ {
		cat := content.CategoryLiteral
		switch {
		case i > 8:
			cat = content.CategoryEvaluative
		case i > 4:
			cat = content.CategoryInferential
		}
		qs = append(qs, content.Question{
			ID:            i,
			Text:          fmt.Sprintf("Question %d ?", i),
			Category:      cat,
			CorrectAnswer: fmt.Sprintf("Réponse %d", i),
			HintSubtle:    fmt.Sprintf("Indice %d", i),
			HintSpecific:  fmt.Sprintf("Paragraphe %d", i),
		})
	}
	bank, err := content.NewBank("Histoire", "Il était une fois.", nil, qs)
	require.NoError(t, err)
	return bank
}

func startedController(t *testing.T, g grading.Gateway, opts ...func(*Options)) *Controller {
	t.Helper()
	o := Options{Grader: g, SessionID: "test-session"}
	for _, fn := range opts {
		fn(&o)
	}
	c := New(tenQuestionBank(t), o)
	require.NoError(t, c.Login("Alexandra", "David-Néel"))
	require.NoError(t, c.StartQuiz())
	return c
}

// --- Tracker ---

func TestTracker_WrongThenWrongReveals(t *testing.T) {
	q := content.Question{ID: 1, Text: "Q ?", CorrectAnswer: "Mademoiselle Myrial", HintSubtle: "Pense au nom de scène."}
	tr := NewTracker(q)
	assert.Equal(t, StateFresh, tr.State())

	require.NoError(t, tr.Begin("Alexandra"))
	assert.Equal(t, StateAwaitingVerdict, tr.State())
	fb, rec, err := tr.Apply(wrong("Ce n'est pas cela."))
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, StateHintShown, tr.State())
	assert.Equal(t, FeedbackRetry, fb.Kind)
	assert.Equal(t, "Votre réponse est incorrecte. Voici un indice pour vous aider : Pense au nom de scène.", fb.Message)

	require.NoError(t, tr.Begin("Alexandrine"))
	fb, rec, err = tr.Apply(wrong("Toujours pas."))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, StateResolvedWrong, tr.State())
	assert.Equal(t, FeedbackFail, fb.Kind)
	assert.Contains(t, fb.Message, "Mademoiselle Myrial")
	assert.Equal(t, `Réponse incorrecte. La bonne réponse est : "Mademoiselle Myrial"`, fb.Message)
	assert.Equal(t, AttemptRecord{QuestionID: 1, TriesUsed: 2, Outcome: OutcomeWrong, LearnerAnswer: "Alexandrine"}, *rec)
}

func TestTracker_PartialUsesIncompletePrefix(t *testing.T) {
	tr := NewTracker(content.Question{ID: 3, HintSubtle: "Relis la fin."})
	require.NoError(t, tr.Begin("à moitié"))
	fb, _, err := tr.Apply(grading.Result{Verdict: grading.VerdictPartial, Feedback: "Presque."})
	require.NoError(t, err)
	assert.Equal(t, "Votre réponse est incomplète. Voici un indice pour vous aider : Relis la fin.", fb.Message)
	ts := tr.TryState()
	assert.Equal(t, 1, ts.AttemptsSoFar)
	require.NotNil(t, ts.LastVerdict)
	assert.Equal(t, grading.VerdictPartial, *ts.LastVerdict)
}

func TestTracker_CorrectFirstTry(t *testing.T) {
	tr := NewTracker(content.Question{ID: 2, HintSubtle: "Indice"})
	require.NoError(t, tr.Begin("bonne"))
	fb, rec, err := tr.Apply(correct("Bien vu."))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.TriesUsed)
	assert.Equal(t, OutcomeCorrect, rec.Outcome)
	assert.Equal(t, "Bonne réponse. Bien vu.", fb.Message)
	assert.NotContains(t, fb.Message, "Indice")
}

func TestTracker_Rejections(t *testing.T) {
	tr := NewTracker(content.Question{ID: 1})

	assert.ErrorIs(t, tr.Begin("   "), ErrBlankAnswer)
	assert.Equal(t, StateFresh, tr.State())
	assert.Equal(t, 0, tr.TryState().AttemptsSoFar)

	_, _, err := tr.Apply(correct(""))
	assert.ErrorIs(t, err, ErrNoPending)

	require.NoError(t, tr.Begin("a"))
	assert.ErrorIs(t, tr.Begin("b"), ErrPending)

	_, _, err = tr.Apply(correct(""))
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Begin("c"), ErrResolved)
}

func TestTracker_DegradedResultConsumesTry(t *testing.T) {
	tr := NewTracker(content.Question{ID: 1, CorrectAnswer: "Lhassa", HintSubtle: "Une ville interdite."})

	require.NoError(t, tr.Begin("Pékin"))
	fb, _, err := tr.Apply(grading.Unavailable())
	require.NoError(t, err)
	assert.Equal(t, StateHintShown, tr.State())
	assert.True(t, fb.Degraded)
	assert.True(t, strings.HasPrefix(fb.Message, grading.MsgUnavailable))
	assert.Contains(t, fb.Message, "Une ville interdite.")

	require.NoError(t, tr.Begin("Lhassa"))
	fb, rec, err := tr.Apply(grading.Unavailable())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, StateResolvedWrong, tr.State())
	assert.Contains(t, fb.Message, grading.MsgUnavailable)
	assert.Contains(t, fb.Message, `"Lhassa"`)
}

// --- Aggregate ---

func TestAggregate_Scenario(t *testing.T) {
	bank := tenQuestionBank(t)
	correctIDs := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 9: true}

	var attempts []AttemptRecord
	for _, q := range bank.Questions() {
		rec := AttemptRecord{QuestionID: q.ID, TriesUsed: 2, Outcome: OutcomeWrong}
		if correctIDs[q.ID] {
			rec = AttemptRecord{QuestionID: q.ID, TriesUsed: 1, Outcome: OutcomeCorrect}
		}
		attempts = append(attempts, rec)
	}

	scores := Aggregate(bank, attempts)
	require.Len(t, scores, 3)
	assert.Equal(t, content.CategoryLiteral, scores[0].Category)
	assert.Equal(t, content.CategoryInferential, scores[1].Category)
	assert.Equal(t, content.CategoryEvaluative, scores[2].Category)

	var pcts []float64
	for _, s := range scores {
		pcts = append(pcts, s.Percentage)
	}
	assert.Equal(t, []float64{100, 50, 50}, pcts)
	assert.Equal(t, 4, scores[0].Correct)
	assert.Equal(t, 2, scores[1].Correct)
	assert.Equal(t, 1, scores[2].Correct)

	assert.Equal(t, scores, Aggregate(bank, attempts), "aggregate must be deterministic")
}

func TestAggregate_EmptyCategoryIsZero(t *testing.T) {
	bank, err := content.NewBank("t", "s", nil, []content.Question{
		{ID: 1, Text: "q", Category: content.CategoryLiteral, CorrectAnswer: "a", HintSubtle: "h"},
	})
	require.NoError(t, err)

	scores := Aggregate(bank, nil)
	require.Len(t, scores, 3)
	for _, s := range scores {
		assert.Equal(t, float64(0), s.Percentage, s.Label)
		assert.Equal(t, 0, s.Correct)
	}
	assert.Equal(t, 1, scores[0].Total)
	assert.Equal(t, 0, scores[1].Total)
	assert.Equal(t, 0, scores[2].Total)
}

func TestAggregate_IgnoresDuplicatesAndUnknownIDs(t *testing.T) {
	bank := tenQuestionBank(t)
	scores := Aggregate(bank, []AttemptRecord{
		{QuestionID: 1, TriesUsed: 1, Outcome: OutcomeCorrect},
		{QuestionID: 1, TriesUsed: 1, Outcome: OutcomeCorrect},
		{QuestionID: 99, TriesUsed: 1, Outcome: OutcomeCorrect},
	})
	assert.Equal(t, 1, scores[0].Correct)
	assert.Equal(t, 25, scores[0].RoundedPercent())
}

// --- Controller ---

func TestController_FullRunOneRecordPerQuestion(t *testing.T) {
	// Odd questions correct at once, even ones wrong twice.
	var script []grading.Result
	for i := 1; i <= 10; i++ {
		if i%2 == 1 {
			script = append(script, correct("ok"))
		} else {
			script = append(script, wrong("non"), wrong("non"))
		}
	}
	g := &scriptedGrader{results: script}
	c := startedController(t, g)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		_, err := c.Submit(ctx, "réponse")
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = c.Submit(ctx, "autre réponse")
			require.NoError(t, err)
		}
		done, err := c.Advance()
		require.NoError(t, err)
		assert.Equal(t, i == 10, done)
	}

	attempts := c.Attempts()
	require.Len(t, attempts, 10)
	for i, a := range attempts {
		assert.Equal(t, i+1, a.QuestionID)
		if a.QuestionID%2 == 1 {
			assert.Equal(t, 1, a.TriesUsed)
			assert.Equal(t, OutcomeCorrect, a.Outcome)
		} else {
			assert.Equal(t, 2, a.TriesUsed)
			assert.Equal(t, OutcomeWrong, a.Outcome)
		}
	}
	assert.Equal(t, 15, g.calls(), "one grading call per submission")
	assert.Equal(t, PhaseResults, c.Snapshot().Phase)

	res, err := c.Results()
	require.NoError(t, err)
	assert.Equal(t, 5, res.CorrectAnswers)
	assert.Equal(t, 10, res.TotalQuestions)

	_, err = c.Submit(ctx, "encore")
	assert.ErrorIs(t, err, ErrFinished)
}

func TestController_BlankAnswerNeverCallsGateway(t *testing.T) {
	g := &scriptedGrader{}
	c := startedController(t, g)

	before := c.Snapshot()
	for _, blank := range []string{"", "  ", "\n\t"} {
		_, err := c.Submit(context.Background(), blank)
		assert.ErrorIs(t, err, ErrBlankAnswer)
	}
	assert.Equal(t, 0, g.calls())
	assert.Equal(t, before, c.Snapshot())
}

func TestController_Question1Scenario(t *testing.T) {
	g := &scriptedGrader{results: []grading.Result{wrong("Non."), wrong("Non.")}}
	c := startedController(t, g)
	ctx := context.Background()

	fb, err := c.Submit(ctx, "Paris")
	require.NoError(t, err)
	snap := c.Snapshot()
	assert.Equal(t, StateHintShown, snap.State)
	assert.Contains(t, fb.Message, "Indice 1")
	assert.Empty(t, c.Attempts())

	_, err = c.Advance()
	assert.ErrorIs(t, err, ErrNotResolved)

	fb, err = c.Submit(ctx, "Lyon")
	require.NoError(t, err)
	assert.Equal(t, StateResolvedWrong, c.Snapshot().State)
	assert.Contains(t, fb.Message, "Réponse 1")
	assert.Equal(t, []AttemptRecord{{QuestionID: 1, TriesUsed: 2, Outcome: OutcomeWrong, LearnerAnswer: "Lyon"}}, c.Attempts())
}

func TestController_Question2CorrectFirstTry(t *testing.T) {
	g := &scriptedGrader{results: []grading.Result{correct("a"), correct("b")}}
	c := startedController(t, g)
	ctx := context.Background()

	_, err := c.Submit(ctx, "x")
	require.NoError(t, err)
	_, err = c.Advance()
	require.NoError(t, err)

	fb, err := c.Submit(ctx, "y")
	require.NoError(t, err)
	assert.Equal(t, FeedbackSuccess, fb.Kind)
	assert.NotContains(t, fb.Message, "Indice 2")
	attempts := c.Attempts()
	require.Len(t, attempts, 2)
	assert.Equal(t, AttemptRecord{QuestionID: 2, TriesUsed: 1, Outcome: OutcomeCorrect, LearnerAnswer: "y"}, attempts[1])
}

func TestController_GatewayTimeoutConsumesTry(t *testing.T) {
	hang := grading.GatewayFunc(func(ctx context.Context, _ grading.Request) grading.Result {
		<-ctx.Done()
		return correct("trop tard")
	})
	c := startedController(t, hang, func(o *Options) { o.GradingTimeout = 20 * time.Millisecond })

	start := time.Now()
	fb, err := c.Submit(context.Background(), "Lhassa")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, fb.Degraded)
	assert.Contains(t, fb.Message, grading.MsgUnavailable)

	snap := c.Snapshot()
	assert.Equal(t, StateHintShown, snap.State)
	assert.Equal(t, 1, snap.TryState.AttemptsSoFar)
	assert.False(t, snap.Pending)
}

func TestController_SinglePendingAndStale(t *testing.T) {
	g := &scriptedGrader{results: []grading.Result{correct("ok")}}
	c := startedController(t, g)

	p, err := c.Begin("un")
	require.NoError(t, err)
	assert.True(t, c.Pending())
	assert.Equal(t, 1, p.QuestionID())

	_, err = c.Begin("deux")
	assert.ErrorIs(t, err, ErrPending)
	_, err = c.Advance()
	assert.ErrorIs(t, err, ErrPending)

	// Navigation is allowed while waiting.
	require.NoError(t, c.JumpToText())
	require.NoError(t, c.ReturnToQuiz())

	_, err = c.Resolve(p, p.Run(context.Background()))
	require.NoError(t, err)
	assert.False(t, c.Pending())

	_, err = c.Resolve(p, correct("again"))
	assert.ErrorIs(t, err, ErrStale)
	assert.Len(t, c.Attempts(), 1)
}

func TestController_AbandonDiscardsInFlight(t *testing.T) {
	rec := &memRecorder{}
	c := startedController(t, &scriptedGrader{}, func(o *Options) { o.Recorder = rec })

	p, err := c.Begin("un")
	require.NoError(t, err)
	c.Abandon()
	c.Abandon()

	_, err = c.Resolve(p, correct("late"))
	assert.ErrorIs(t, err, ErrStale)
	assert.Empty(t, c.Attempts())

	_, err = c.Begin("deux")
	assert.ErrorIs(t, err, ErrAbandoned)
	assert.True(t, c.Snapshot().Abandoned)
	assert.Equal(t, []string{"start", "abandon"}, rec.eventNames())
}

func TestController_AbandonStopsRemediation(t *testing.T) {
	calls := 0
	gen := remediation.GatewayFunc(func(context.Context, remediation.Request) (string, error) {
		calls++
		return "bilan", nil
	})
	c := startedController(t, &scriptedGrader{results: allCorrect(10)}, func(o *Options) { o.Remediator = gen })
	finishAllCorrect(t, c)
	c.Abandon()

	text, err := c.Remediate(context.Background())
	assert.ErrorIs(t, err, ErrAbandoned)
	assert.Empty(t, text)
	assert.Zero(t, calls)
	_, ok := c.Narrative()
	assert.False(t, ok)
}

func TestController_AbandonDiscardsInFlightNarrative(t *testing.T) {
	var c *Controller
	gen := remediation.GatewayFunc(func(context.Context, remediation.Request) (string, error) {
		c.Abandon()
		return "bilan", nil
	})
	c = startedController(t, &scriptedGrader{results: allCorrect(10)}, func(o *Options) { o.Remediator = gen })
	finishAllCorrect(t, c)

	_, err := c.Remediate(context.Background())
	assert.ErrorIs(t, err, ErrAbandoned)
	_, ok := c.Narrative()
	assert.False(t, ok)
}

func TestController_Phases(t *testing.T) {
	c := New(tenQuestionBank(t), Options{Grader: &scriptedGrader{}})

	_, err := c.Begin("x")
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.ErrorIs(t, c.StartQuiz(), ErrWrongPhase)

	assert.ErrorIs(t, c.Login(" ", "Dupont"), ErrIncompleteProfile)
	assert.Equal(t, PhaseLogin, c.Snapshot().Phase)

	require.NoError(t, c.Login("  Jeanne ", " Dupont "))
	snap := c.Snapshot()
	assert.Equal(t, PhaseReading, snap.Phase)
	assert.Equal(t, Profile{FirstName: "Jeanne", LastName: "Dupont"}, snap.Profile)
	assert.NotEmpty(t, snap.SessionID)
	assert.ErrorIs(t, c.Login("a", "b"), ErrWrongPhase)

	_, err = c.Begin("x")
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.ErrorIs(t, c.JumpToText(), ErrWrongPhase)

	require.NoError(t, c.StartQuiz())
	assert.True(t, c.Snapshot().QuizStarted)
	_, err = c.Results()
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = c.Remediate(context.Background())
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestController_JumpToTextKeepsPosition(t *testing.T) {
	g := &scriptedGrader{results: []grading.Result{wrong("non")}}
	c := startedController(t, g)

	_, err := c.Submit(context.Background(), "faux")
	require.NoError(t, err)
	before := c.Snapshot()

	require.NoError(t, c.JumpToText())
	assert.Equal(t, PhaseReading, c.Snapshot().Phase)
	require.NoError(t, c.ReturnToQuiz())

	after := c.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, StateHintShown, after.State)
}

func finishAllCorrect(t *testing.T, c *Controller) {
	t.Helper()
	for {
		_, err := c.Submit(context.Background(), "ok")
		require.NoError(t, err)
		done, err := c.Advance()
		require.NoError(t, err)
		if done {
			return
		}
	}
}

func allCorrect(n int) []grading.Result {
	out := make([]grading.Result, n)
	for i := range out {
		out[i] = correct("ok")
	}
	return out
}

func TestController_RemediationCachedAndDenormalized(t *testing.T) {
	var got []remediation.Request
	gen := remediation.GatewayFunc(func(_ context.Context, req remediation.Request) (string, error) {
		got = append(got, req)
		return "**Bravo**", nil
	})
	c := startedController(t, &scriptedGrader{results: allCorrect(10)}, func(o *Options) { o.Remediator = gen })
	finishAllCorrect(t, c)

	text, err := c.Remediate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "**Bravo**", text)
	text, err = c.Remediate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "**Bravo**", text)
	require.Len(t, got, 1)

	cached, ok := c.Narrative()
	assert.True(t, ok)
	assert.Equal(t, "**Bravo**", cached)

	a := got[0].Attempts
	require.Len(t, a, 10)
	assert.Equal(t, remediation.Attempt{
		QuestionID: 1, QuestionText: "Question 1 ?", Category: "Littérale",
		Status: "correct", Tries: 1, LearnerAnswer: "ok",
	}, a[0])
	assert.Equal(t, "Évaluative", a[9].Category)
}

func TestController_RemediationFailureFallsBack(t *testing.T) {
	calls := 0
	gen := remediation.GatewayFunc(func(context.Context, remediation.Request) (string, error) {
		calls++
		return "", fmt.Errorf("dial: %w", remediation.ErrUnreachable)
	})
	c := startedController(t, &scriptedGrader{results: allCorrect(10)}, func(o *Options) { o.Remediator = gen })
	finishAllCorrect(t, c)

	text, err := c.Remediate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, remediation.MsgUnreachable, text)
	_, ok := c.Narrative()
	assert.False(t, ok)

	// Results still available.
	res, err := c.Results()
	require.NoError(t, err)
	assert.Equal(t, 10, res.CorrectAnswers)

	_, _ = c.Remediate(context.Background())
	assert.Equal(t, 2, calls, "failures are not cached")
}

// memRecorder captures recorded events.
type memRecorder struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (r *memRecorder) add(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
	if r.fail {
		return errors.New("disk full")
	}
	return nil
}

func (r *memRecorder) eventNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *memRecorder) RecordStart(context.Context, SessionInfo) error { return r.add("start") }
func (r *memRecorder) RecordAttempt(_ context.Context, _ SessionInfo, q content.Question, _ AttemptRecord) error {
	return r.add(fmt.Sprintf("attempt:%d", q.ID))
}
func (r *memRecorder) RecordComplete(context.Context, SessionInfo, []CategoryScore, int, time.Duration) error {
	return r.add("complete")
}
func (r *memRecorder) RecordAbandon(context.Context, SessionInfo, time.Duration) error {
	return r.add("abandon")
}

func TestController_RecorderEventsAndFailuresIgnored(t *testing.T) {
	rec := &memRecorder{fail: true}
	c := startedController(t, &scriptedGrader{results: allCorrect(10)}, func(o *Options) { o.Recorder = rec })
	finishAllCorrect(t, c)

	names := rec.eventNames()
	require.Len(t, names, 12)
	assert.Equal(t, "start", names[0])
	assert.Equal(t, "attempt:1", names[1])
	assert.Equal(t, "attempt:10", names[10])
	assert.Equal(t, "complete", names[11])

	// Abandon after completion records nothing more.
	c.Abandon()
	assert.Len(t, rec.eventNames(), 12)
}

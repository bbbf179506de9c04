package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/remediation"
)

// Default deadlines for gateway calls.
const (
	DefaultGradingTimeout     = 30 * time.Second
	DefaultRemediationTimeout = 60 * time.Second
)

// Phase is the coarse position of a learner in a session.
type Phase int

const (
	PhaseLogin Phase = iota
	PhaseReading
	PhaseQuiz
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseLogin:
		return "login"
	case PhaseReading:
		return "reading"
	case PhaseQuiz:
		return "quiz"
	case PhaseResults:
		return "results"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for c := PhaseLogin; c <= PhaseResults; c++ {
		if c.String() == string(text) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Options configures a Controller.
type Options struct {
	Grader     grading.Gateway
	Remediator remediation.Gateway

	// Recorder is optional.
	Recorder Recorder

	GradingTimeout     time.Duration
	RemediationTimeout time.Duration

	// SessionID defaults to a random UUID.
	SessionID string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Controller sequences one learner through a bank. It is safe for concurrent
// use; at most one grading call is in flight at any time.
type Controller struct {
	mu   sync.Mutex
	bank *content.Bank
	opts Options

	phase       Phase
	profile     Profile
	quizStarted bool
	index       int
	tracker     *Tracker
	attempts    []AttemptRecord
	startedAt   time.Time
	finishedAt  time.Time

	// gen is bumped on every question change and on abandon. A Pending from
	// an older generation is stale.
	gen       uint64
	pending   *Pending
	abandoned bool

	// remMu serialises remediation calls so only one is in flight.
	remMu     sync.Mutex
	narrative *string
}

// New returns a controller in the login phase.
func New(bank *content.Bank, opts Options) *Controller {
	if opts.GradingTimeout <= 0 {
		opts.GradingTimeout = DefaultGradingTimeout
	}
	if opts.RemediationTimeout <= 0 {
		opts.RemediationTimeout = DefaultRemediationTimeout
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{bank: bank, opts: opts}
}

// SessionID returns the identifier used in recorded events.
func (c *Controller) SessionID() string { return c.opts.SessionID }

// Bank returns the content the controller runs over.
func (c *Controller) Bank() *content.Bank { return c.bank }

// Login captures the learner profile and opens the story.
func (c *Controller) Login(first, last string) error {
	profile, err := NewProfile(first, last)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if err := c.checkLive(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.phase != PhaseLogin {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	c.profile = profile
	c.phase = PhaseReading
	c.startedAt = c.opts.Now()
	c.tracker = NewTracker(c.mustQuestion(0))
	info := c.sessionInfo()
	c.mu.Unlock()

	if r := c.opts.Recorder; r != nil {
		logRecordErr("start", info.ID, r.RecordStart(context.Background(), info))
	}
	return nil
}

// StartQuiz leaves the story for the questions.
func (c *Controller) StartQuiz() error {
	return c.enterQuiz()
}

// ReturnToQuiz goes back to the current question after JumpToText. The
// question's try-state is untouched.
func (c *Controller) ReturnToQuiz() error {
	return c.enterQuiz()
}

func (c *Controller) enterQuiz() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	if c.phase != PhaseReading {
		return ErrWrongPhase
	}
	c.phase = PhaseQuiz
	c.quizStarted = true
	return nil
}

// JumpToText shows the story without losing the quiz position. A pending
// verdict still lands on the question it was submitted for.
func (c *Controller) JumpToText() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	if c.phase != PhaseQuiz {
		return ErrWrongPhase
	}
	c.phase = PhaseReading
	return nil
}

// Pending is one submission waiting for its verdict. Run it outside any UI
// loop, then hand the result to Controller.Resolve.
type Pending struct {
	gen      uint64
	index    int
	question content.Question
	req      grading.Request
	grader   grading.Gateway
	timeout  time.Duration
}

// QuestionID returns the id of the question the submission belongs to.
func (p *Pending) QuestionID() int { return p.question.ID }

// Run performs the single grading call for this submission under the
// grading deadline. Any failure, including an expired deadline, yields the
// degraded Wrong result.
func (p *Pending) Run(ctx context.Context) grading.Result {
	if p.grader == nil {
		return grading.Unavailable()
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := p.grader.Grade(ctx, p.req)
	if ctx.Err() != nil && !res.Degraded {
		return grading.Unavailable()
	}
	return res
}

// Begin validates a submission and marks the current question as awaiting
// its verdict. Rejections leave every piece of state unchanged.
func (c *Controller) Begin(answer string) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return nil, err
	}
	if err := c.checkQuiz(); err != nil {
		return nil, err
	}
	if c.pending != nil {
		return nil, ErrPending
	}
	if err := c.tracker.Begin(answer); err != nil {
		return nil, err
	}

	q := c.tracker.Question()
	p := &Pending{
		gen:      c.gen,
		index:    c.index,
		question: q,
		req: grading.Request{
			QuestionText:  q.Text,
			ModelAnswer:   q.CorrectAnswer,
			LearnerAnswer: answer,
		},
		grader:  c.opts.Grader,
		timeout: c.opts.GradingTimeout,
	}
	c.pending = p
	return p, nil
}

// Resolve applies the verdict of p. A Pending from an abandoned session or
// one that is no longer current returns ErrStale and changes nothing.
func (c *Controller) Resolve(p *Pending, res grading.Result) (Feedback, error) {
	c.mu.Lock()
	if p == nil || c.abandoned || c.pending != p || p.gen != c.gen || p.index != c.index {
		c.mu.Unlock()
		return Feedback{}, ErrStale
	}
	c.pending = nil

	fb, rec, err := c.tracker.Apply(res)
	if err != nil {
		c.mu.Unlock()
		return Feedback{}, err
	}
	if rec != nil {
		c.attempts = append(c.attempts, *rec)
	}
	info := c.sessionInfo()
	c.mu.Unlock()

	if r := c.opts.Recorder; r != nil && rec != nil {
		logRecordErr("attempt", info.ID, r.RecordAttempt(context.Background(), info, p.question, *rec))
	}
	return fb, nil
}

// Submit grades answer for the current question. It blocks for the
// duration of the grading call.
func (c *Controller) Submit(ctx context.Context, answer string) (Feedback, error) {
	p, err := c.Begin(answer)
	if err != nil {
		return Feedback{}, err
	}
	return c.Resolve(p, p.Run(ctx))
}

// Advance moves past a resolved question. It reports done when the last
// question was resolved and the session moved to results.
func (c *Controller) Advance() (done bool, err error) {
	c.mu.Lock()
	if err := c.checkLive(); err != nil {
		c.mu.Unlock()
		return false, err
	}
	if err := c.checkQuiz(); err != nil {
		c.mu.Unlock()
		return false, err
	}
	if c.pending != nil {
		c.mu.Unlock()
		return false, ErrPending
	}
	if !c.tracker.State().Resolved() {
		c.mu.Unlock()
		return false, ErrNotResolved
	}

	c.gen++
	if c.index+1 < c.bank.Len() {
		c.index++
		c.tracker = NewTracker(c.mustQuestion(c.index))
		c.mu.Unlock()
		return false, nil
	}

	c.phase = PhaseResults
	c.finishedAt = c.opts.Now()
	scores := Aggregate(c.bank, c.attempts)
	correct := CorrectCount(c.attempts)
	elapsed := c.finishedAt.Sub(c.startedAt)
	info := c.sessionInfo()
	c.mu.Unlock()

	if r := c.opts.Recorder; r != nil {
		logRecordErr("complete", info.ID, r.RecordComplete(context.Background(), info, scores, correct, elapsed))
	}
	return true, nil
}

// Abandon ends the session. Any in-flight verdict is discarded and every
// later operation fails with ErrAbandoned. Abandon is idempotent.
func (c *Controller) Abandon() {
	c.mu.Lock()
	if c.abandoned {
		c.mu.Unlock()
		return
	}
	c.abandoned = true
	c.gen++
	c.pending = nil
	record := c.phase != PhaseLogin && c.phase != PhaseResults
	info := c.sessionInfo()
	elapsed := c.opts.Now().Sub(c.startedAt)
	c.mu.Unlock()

	if r := c.opts.Recorder; r != nil && record {
		logRecordErr("abandon", info.ID, r.RecordAbandon(context.Background(), info, elapsed))
	}
}

// Pending reports whether a verdict is awaited.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Attempts returns a copy of the finalized records in question order.
func (c *Controller) Attempts() []AttemptRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]AttemptRecord(nil), c.attempts...)
}

// Results is the end-of-session summary.
type Results struct {
	Profile        Profile         `json:"profile"`
	Title          string          `json:"title"`
	Scores         []CategoryScore `json:"scores"`
	Attempts       []AttemptRecord `json:"attempts"`
	CorrectAnswers int             `json:"correctAnswers"`
	TotalQuestions int             `json:"totalQuestions"`
	CompletedAt    time.Time       `json:"completedAt"`
}

// Results returns the summary once the last question has been resolved.
// Scores are recomputed from the attempt records on every call.
func (c *Controller) Results() (Results, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseResults {
		return Results{}, ErrWrongPhase
	}
	return Results{
		Profile:        c.profile,
		Title:          c.bank.Title(),
		Scores:         Aggregate(c.bank, c.attempts),
		Attempts:       append([]AttemptRecord(nil), c.attempts...),
		CorrectAnswers: CorrectCount(c.attempts),
		TotalQuestions: c.bank.Len(),
		CompletedAt:    c.finishedAt,
	}, nil
}

// Remediate returns the remediation narrative, requesting it on first use.
// A successful narrative is cached. A failed request yields the fallback
// message without error and is retried on the next call. Once the session
// is abandoned, including while a request is in flight, Remediate returns
// ErrAbandoned and caches nothing.
func (c *Controller) Remediate(ctx context.Context) (string, error) {
	c.remMu.Lock()
	defer c.remMu.Unlock()

	c.mu.Lock()
	if err := c.checkLive(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if c.phase != PhaseResults {
		c.mu.Unlock()
		return "", ErrWrongPhase
	}
	if c.narrative != nil {
		text := *c.narrative
		c.mu.Unlock()
		return text, nil
	}
	req := c.remediationRequest()
	c.mu.Unlock()

	if c.opts.Remediator == nil {
		return remediation.MsgFailed, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.RemediationTimeout)
	defer cancel()
	text, err := c.opts.Remediator.Generate(ctx, req)
	if err != nil {
		return remediation.Fallback(err), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.abandoned {
		return "", ErrAbandoned
	}
	c.narrative = &text
	return text, nil
}

// Narrative returns the cached narrative, if one was generated.
func (c *Controller) Narrative() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.narrative == nil {
		return "", false
	}
	return *c.narrative, true
}

func (c *Controller) remediationRequest() remediation.Request {
	req := remediation.Request{Attempts: make([]remediation.Attempt, 0, len(c.attempts))}
	for _, a := range c.attempts {
		q, _ := c.bank.ByID(a.QuestionID)
		req.Attempts = append(req.Attempts, remediation.Attempt{
			QuestionID:    a.QuestionID,
			QuestionText:  q.Text,
			Category:      q.Category.Label(),
			Status:        a.Outcome.String(),
			Tries:         a.TriesUsed,
			LearnerAnswer: a.LearnerAnswer,
		})
	}
	return req
}

// Snapshot is a read-only view of the controller for renderers.
type Snapshot struct {
	SessionID string            `json:"sessionId"`
	Phase     Phase             `json:"phase"`
	Profile   Profile           `json:"profile"`
	Title     string            `json:"title"`
	Index     int               `json:"index"`
	Total     int               `json:"total"`
	Question  *content.Question `json:"question,omitempty"`
	State     State             `json:"state"`
	TryState  TryState          `json:"tryState"`
	Feedback  *Feedback         `json:"feedback,omitempty"`
	Pending   bool              `json:"pending"`
	Answered  int               `json:"answered"`
	Abandoned bool              `json:"abandoned,omitempty"`

	// QuizStarted is set once the learner has left the story for the
	// questions at least once.
	QuizStarted bool `json:"quizStarted"`
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		SessionID:   c.opts.SessionID,
		Phase:       c.phase,
		Profile:     c.profile,
		Title:       c.bank.Title(),
		Index:       c.index,
		Total:       c.bank.Len(),
		Pending:     c.pending != nil,
		Answered:    len(c.attempts),
		Abandoned:   c.abandoned,
		QuizStarted: c.quizStarted,
	}
	if c.tracker != nil && c.phase != PhaseResults {
		q := c.tracker.Question()
		s.Question = &q
		s.State = c.tracker.State()
		s.TryState = c.tracker.TryState()
		if fb, ok := c.tracker.Feedback(); ok {
			s.Feedback = &fb
		}
	}
	return s
}

func (c *Controller) checkLive() error {
	if c.abandoned {
		return ErrAbandoned
	}
	return nil
}

func (c *Controller) checkQuiz() error {
	switch c.phase {
	case PhaseQuiz:
		return nil
	case PhaseResults:
		return ErrFinished
	default:
		return ErrWrongPhase
	}
}

func (c *Controller) mustQuestion(i int) content.Question {
	q, ok := c.bank.At(i)
	if !ok {
		panic(fmt.Sprintf("quiz: question index %d out of range", i))
	}
	return q
}

func (c *Controller) sessionInfo() SessionInfo {
	return SessionInfo{
		ID:             c.opts.SessionID,
		Profile:        c.profile,
		ContentVersion: c.bank.Version(),
		QuestionsTotal: c.bank.Len(),
	}
}

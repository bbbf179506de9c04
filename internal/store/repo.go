package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates calls and tokens under one key (purpose or model).
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// Session lifecycle actions.
const (
	SessionActionStart    = "start"
	SessionActionComplete = "complete"
	SessionActionAbandon  = "abandon"
)

// CategoryScoreSummary is the stored form of one category result.
type CategoryScoreSummary struct {
	Category   string  `json:"category"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

// SessionEventData captures a quiz session lifecycle event.
type SessionEventData struct {
	SessionID      string
	Action         string
	FirstName      string
	LastName       string
	ContentVersion string
	QuestionsTotal int
	CorrectAnswers int
	DurationSecs   int
	Scores         []CategoryScoreSummary
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// AttemptEventData captures one finalized question outcome.
type AttemptEventData struct {
	SessionID     string
	QuestionID    int
	Category      string
	QuestionText  string
	LearnerAnswer string
	TriesUsed     int
	Outcome       string
}

// AttemptEventRecord is a stored attempt event.
type AttemptEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	AttemptEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one LLM event by ID, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendSessionEvent records a session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendAttemptEvent records a finalized question outcome.
	AppendAttemptEvent(ctx context.Context, data AttemptEventData) error

	// QuerySessionEvents returns session events for one action (all actions
	// when empty), newest first.
	QuerySessionEvents(ctx context.Context, action string, opts QueryOpts) ([]SessionEventRecord, error)

	// AttemptsForSession returns a session's attempt events in append order.
	AttemptsForSession(ctx context.Context, sessionID string) ([]AttemptEventRecord, error)
}

package quiz

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/store"
)

// Recorder receives quiz outcome events. Implementations must not block for
// long; errors are logged by the caller and never alter quiz state.
type Recorder interface {
	RecordStart(ctx context.Context, s SessionInfo) error
	RecordAttempt(ctx context.Context, s SessionInfo, q content.Question, rec AttemptRecord) error
	RecordComplete(ctx context.Context, s SessionInfo, scores []CategoryScore, correct int, elapsed time.Duration) error
	RecordAbandon(ctx context.Context, s SessionInfo, elapsed time.Duration) error
}

// SessionInfo identifies a quiz session in recorded events.
type SessionInfo struct {
	ID             string
	Profile        Profile
	ContentVersion string
	QuestionsTotal int
}

// StoreRecorder appends quiz events to the event store.
type StoreRecorder struct {
	repo store.EventRepo
}

// NewStoreRecorder returns a Recorder backed by repo.
func NewStoreRecorder(repo store.EventRepo) *StoreRecorder {
	return &StoreRecorder{repo: repo}
}

func (r *StoreRecorder) RecordStart(ctx context.Context, s SessionInfo) error {
	return r.repo.AppendSessionEvent(ctx, r.sessionData(s, store.SessionActionStart))
}

func (r *StoreRecorder) RecordAttempt(ctx context.Context, s SessionInfo, q content.Question, rec AttemptRecord) error {
	return r.repo.AppendAttemptEvent(ctx, store.AttemptEventData{
		SessionID:     s.ID,
		QuestionID:    rec.QuestionID,
		Category:      q.Category.String(),
		QuestionText:  q.Text,
		LearnerAnswer: rec.LearnerAnswer,
		TriesUsed:     rec.TriesUsed,
		Outcome:       rec.Outcome.String(),
	})
}

func (r *StoreRecorder) RecordComplete(ctx context.Context, s SessionInfo, scores []CategoryScore, correct int, elapsed time.Duration) error {
	data := r.sessionData(s, store.SessionActionComplete)
	data.CorrectAnswers = correct
	data.DurationSecs = int(elapsed.Seconds())
	for _, sc := range scores {
		data.Scores = append(data.Scores, store.CategoryScoreSummary{
			Category:   sc.Category.String(),
			Total:      sc.Total,
			Correct:    sc.Correct,
			Percentage: sc.Percentage,
		})
	}
	return r.repo.AppendSessionEvent(ctx, data)
}

func (r *StoreRecorder) RecordAbandon(ctx context.Context, s SessionInfo, elapsed time.Duration) error {
	data := r.sessionData(s, store.SessionActionAbandon)
	data.DurationSecs = int(elapsed.Seconds())
	return r.repo.AppendSessionEvent(ctx, data)
}

func (r *StoreRecorder) sessionData(s SessionInfo, action string) store.SessionEventData {
	return store.SessionEventData{
		SessionID:      s.ID,
		Action:         action,
		FirstName:      s.Profile.FirstName,
		LastName:       s.Profile.LastName,
		ContentVersion: s.ContentVersion,
		QuestionsTotal: s.QuestionsTotal,
	}
}

// logRecordErr logs a failed recorder call.
func logRecordErr(event string, sessionID string, err error) {
	if err != nil {
		slog.Warn("quiz event not recorded", "event", event, "session", sessionID, "error", err)
	}
}

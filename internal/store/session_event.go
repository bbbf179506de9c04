package store

import (
	"context"
	"encoding/json"
	"fmt"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var scores string
	if len(data.Scores) > 0 {
		b, err := json.Marshal(data.Scores)
		if err != nil {
			return fmt.Errorf("marshal scores: %w", err)
		}
		scores = string(b)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO session_events
		(sequence, created_at, session_id, action, first_name, last_name,
		 content_version, questions_total, correct_answers, duration_secs, scores_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		seqNum, nowMillis(), data.SessionID, data.Action, data.FirstName, data.LastName,
		data.ContentVersion, data.QuestionsTotal, data.CorrectAnswers, data.DurationSecs, scores,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAttemptEvent(ctx context.Context, data AttemptEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO attempt_events
		(sequence, created_at, session_id, question_id, category, question_text,
		 learner_answer, tries_used, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		seqNum, nowMillis(), data.SessionID, data.QuestionID, data.Category,
		data.QuestionText, data.LearnerAnswer, data.TriesUsed, data.Outcome,
	)
	if err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, action string, opts QueryOpts) ([]SessionEventRecord, error) {
	var f filter
	if action != "" {
		f.add("action = ?", action)
	}
	tail := f.applyOpts(opts)

	rows, err := r.db.QueryContext(ctx, `SELECT sequence, created_at, session_id, action,
		first_name, last_name, content_version, questions_total, correct_answers,
		duration_secs, scores_json FROM session_events`+f.where()+tail, f.args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var records []SessionEventRecord
	for rows.Next() {
		var (
			rec     SessionEventRecord
			created int64
			scores  string
		)
		err := rows.Scan(&rec.Sequence, &created, &rec.SessionID, &rec.Action,
			&rec.FirstName, &rec.LastName, &rec.ContentVersion, &rec.QuestionsTotal,
			&rec.CorrectAnswers, &rec.DurationSecs, &scores)
		if err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		rec.Timestamp = fromMillis(created)
		if scores != "" {
			if err := json.Unmarshal([]byte(scores), &rec.Scores); err != nil {
				return nil, fmt.Errorf("decode scores of session %s: %w", rec.SessionID, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) AttemptsForSession(ctx context.Context, sessionID string) ([]AttemptEventRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT sequence, created_at, session_id, question_id,
		category, question_text, learner_answer, tries_used, outcome
		FROM attempt_events WHERE session_id = $1 ORDER BY sequence`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var records []AttemptEventRecord
	for rows.Next() {
		var (
			rec     AttemptEventRecord
			created int64
		)
		err := rows.Scan(&rec.Sequence, &created, &rec.SessionID, &rec.QuestionID,
			&rec.Category, &rec.QuestionText, &rec.LearnerAnswer, &rec.TriesUsed, &rec.Outcome)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Timestamp = fromMillis(created)
		records = append(records, rec)
	}
	return records, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"strings"
)

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	schema := schemaSQLite
	if driver == DriverPostgres {
		schema = schemaPostgres
	}
	// Statements run one at a time; not every driver accepts a batch.
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Timestamps are unix milliseconds in both dialects.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS global_sequence (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  next_val INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS llm_request_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sequence INTEGER NOT NULL UNIQUE,
  created_at INTEGER NOT NULL,
  provider TEXT NOT NULL,
  model TEXT NOT NULL,
  purpose TEXT NOT NULL,
  input_tokens INTEGER NOT NULL DEFAULT 0,
  output_tokens INTEGER NOT NULL DEFAULT 0,
  latency_ms INTEGER NOT NULL DEFAULT 0,
  success INTEGER NOT NULL,
  error_message TEXT NOT NULL DEFAULT '',
  request_body TEXT NOT NULL DEFAULT '',
  response_body TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS session_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sequence INTEGER NOT NULL UNIQUE,
  created_at INTEGER NOT NULL,
  session_id TEXT NOT NULL,
  action TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  content_version TEXT NOT NULL DEFAULT '',
  questions_total INTEGER NOT NULL DEFAULT 0,
  correct_answers INTEGER NOT NULL DEFAULT 0,
  duration_secs INTEGER NOT NULL DEFAULT 0,
  scores_json TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS session_events_session ON session_events(session_id);

CREATE TABLE IF NOT EXISTS attempt_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sequence INTEGER NOT NULL UNIQUE,
  created_at INTEGER NOT NULL,
  session_id TEXT NOT NULL,
  question_id INTEGER NOT NULL,
  category TEXT NOT NULL,
  question_text TEXT NOT NULL,
  learner_answer TEXT NOT NULL,
  tries_used INTEGER NOT NULL,
  outcome TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS attempt_events_session ON attempt_events(session_id)
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS global_sequence (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  next_val BIGINT NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS llm_request_events (
  id BIGSERIAL PRIMARY KEY,
  sequence BIGINT NOT NULL UNIQUE,
  created_at BIGINT NOT NULL,
  provider TEXT NOT NULL,
  model TEXT NOT NULL,
  purpose TEXT NOT NULL,
  input_tokens INTEGER NOT NULL DEFAULT 0,
  output_tokens INTEGER NOT NULL DEFAULT 0,
  latency_ms BIGINT NOT NULL DEFAULT 0,
  success INTEGER NOT NULL,
  error_message TEXT NOT NULL DEFAULT '',
  request_body TEXT NOT NULL DEFAULT '',
  response_body TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS session_events (
  id BIGSERIAL PRIMARY KEY,
  sequence BIGINT NOT NULL UNIQUE,
  created_at BIGINT NOT NULL,
  session_id TEXT NOT NULL,
  action TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  content_version TEXT NOT NULL DEFAULT '',
  questions_total INTEGER NOT NULL DEFAULT 0,
  correct_answers INTEGER NOT NULL DEFAULT 0,
  duration_secs BIGINT NOT NULL DEFAULT 0,
  scores_json TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS session_events_session ON session_events(session_id);

CREATE TABLE IF NOT EXISTS attempt_events (
  id BIGSERIAL PRIMARY KEY,
  sequence BIGINT NOT NULL UNIQUE,
  created_at BIGINT NOT NULL,
  session_id TEXT NOT NULL,
  question_id INTEGER NOT NULL,
  category TEXT NOT NULL,
  question_text TEXT NOT NULL,
  learner_answer TEXT NOT NULL,
  tries_used INTEGER NOT NULL,
  outcome TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS attempt_events_session ON attempt_events(session_id)
`

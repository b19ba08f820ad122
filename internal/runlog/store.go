// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog keeps an audit trail of generation runs and their
// transcripts in SQLite. It is write-mostly: the pipeline never reads it
// back to resume a run.
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/coursegen/pkg/types"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Store is the SQLite run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			audience TEXT,
			model TEXT,
			course_root TEXT,
			status TEXT NOT NULL,
			error TEXT,
			modules INTEGER DEFAULT 0,
			turns INTEGER DEFAULT 0,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			agent TEXT,
			text TEXT,
			tool TEXT,
			payload TEXT,
			created_at TEXT NOT NULL,
			UNIQUE(session_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session_id ON turns(session_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// StartRun inserts a new run row.
func (s *Store) StartRun(ctx context.Context, run types.Run) error {
	if run.Status == "" {
		run.Status = types.RunRunning
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, session_id, topic, audience, model, course_root, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SessionID, run.Topic, run.Audience, run.Model, run.CourseRoot,
		string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun records the outcome of run.ID.
func (s *Store) FinishRun(ctx context.Context, run types.Run) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, modules = ?, turns = ?, finished_at = ? WHERE id = ?`,
		string(run.Status), run.Error, run.Modules, run.Turns, formatTime(run.FinishedAt), run.ID,
	)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

// Record stores one transcript message. It satisfies session.Recorder.
func (s *Store) Record(ctx context.Context, sessionID string, seq int, msg types.Message) error {
	var tool, payload string
	switch {
	case msg.ToolCall != nil:
		tool = msg.ToolCall.Name
		data, err := json.Marshal(msg.ToolCall.Args)
		if err != nil {
			return fmt.Errorf("encoding tool call: %w", err)
		}
		payload = string(data)
	case msg.ToolResult != nil:
		tool = msg.ToolResult.Name
		payload = msg.ToolResult.Output
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO turns (session_id, seq, role, agent, text, tool, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, seq, string(msg.Role), msg.Agent, msg.Text, tool, payload, formatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting turn %d of session %s: %w", seq, sessionID, err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A non-positive limit means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.Run, error) {
	query := `SELECT id, session_id, topic, audience, model, course_root, status,
		COALESCE(error, ''), modules, turns, started_at, COALESCE(finished_at, '')
		FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var (
			r                 types.Run
			status            string
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Topic, &r.Audience, &r.Model, &r.CourseRoot,
			&status, &r.Error, &r.Modules, &r.Turns, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Status = types.RunStatus(status)
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Transcript returns the stored messages of runID in order.
func (s *Store) Transcript(ctx context.Context, runID string) ([]types.Message, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `SELECT session_id FROM runs WHERE id = ?`, runID).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, COALESCE(agent, ''), COALESCE(text, ''), COALESCE(tool, ''), COALESCE(payload, ''), created_at
		 FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var msgs []types.Message
	for rows.Next() {
		var (
			m                      types.Message
			role, tool, payload, t string
		)
		if err := rows.Scan(&role, &m.Agent, &m.Text, &tool, &payload, &t); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		m.Role = types.Role(role)
		m.CreatedAt = parseTime(t)
		switch {
		case tool != "" && m.Role == types.RoleTool:
			m.ToolResult = &types.ToolResult{Name: tool, Output: payload}
		case tool != "":
			call := &types.ToolCall{Name: tool}
			if payload != "" {
				_ = json.Unmarshal([]byte(payload), &call.Args)
			}
			m.ToolCall = call
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

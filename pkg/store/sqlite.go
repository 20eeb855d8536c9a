package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/examjson/parser/pkg/models"
)

// Schema creates the tables used to keep converted question sets
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	run_id         TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	number         INTEGER NOT NULL,
	correct_answer TEXT    NOT NULL,
	text           TEXT    NOT NULL,
	reference      TEXT    NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS options (
	run_id   TEXT    NOT NULL,
	position INTEGER NOT NULL,
	ordinal  INTEGER NOT NULL,
	letter   TEXT    NOT NULL,
	text     TEXT    NOT NULL,
	PRIMARY KEY (run_id, position, ordinal),
	FOREIGN KEY (run_id, position) REFERENCES questions(run_id, position) ON DELETE CASCADE
);
`

// SQLiteStore keeps converted question sets in a SQLite database
type SQLiteStore struct {
	db   *sql.DB
	path string
	log  commonlog.Logger
}

// Open opens or creates the database at path and ensures the schema
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps pragmas applied to every statement
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path, log: commonlog.GetLogger("examjson.store")}
	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Debugf("sqlite store ready at %s", path)
	return s, nil
}

func (s *SQLiteStore) initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveRun stores the questions of one conversion run in a single transaction
func (s *SQLiteStore) SaveRun(ctx context.Context, runID, source string, questions []models.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, created_at) VALUES (?, ?, ?)`,
		runID, source, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	questionStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (run_id, position, number, correct_answer, text, reference) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare question insert: %w", err)
	}
	defer questionStmt.Close()

	optionStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO options (run_id, position, ordinal, letter, text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare option insert: %w", err)
	}
	defer optionStmt.Close()

	for pos, q := range questions {
		if _, err := questionStmt.ExecContext(ctx, runID, pos, q.Number, q.CorrectAnswer, q.Text, q.Reference); err != nil {
			return fmt.Errorf("insert question %d: %w", q.Number, err)
		}
		for ord, letter := range q.Options.Letters() {
			text, _ := q.Options.Get(letter)
			if _, err := optionStmt.ExecContext(ctx, runID, pos, ord, letter, text); err != nil {
				return fmt.Errorf("insert option %s of question %d: %w", letter, q.Number, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", runID, err)
	}

	s.log.Infof("stored %d questions for run %s in %s", len(questions), runID, s.path)
	return nil
}

// Questions loads the questions of a run in their original order
func (s *SQLiteStore) Questions(ctx context.Context, runID string) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, number, correct_answer, text, reference FROM questions WHERE run_id = ? ORDER BY position`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}

	var questions []models.Question
	for rows.Next() {
		var pos int
		q := models.Question{Options: models.NewOptions()}
		if err := rows.Scan(&pos, &q.Number, &q.CorrectAnswer, &q.Text, &q.Reference); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("read questions: %w", err)
	}
	rows.Close()

	optRows, err := s.db.QueryContext(ctx,
		`SELECT position, letter, text FROM options WHERE run_id = ? ORDER BY position, ordinal`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var pos int
		var letter, text string
		if err := optRows.Scan(&pos, &letter, &text); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		if pos < 0 || pos >= len(questions) {
			return nil, fmt.Errorf("option for unknown question position %d", pos)
		}
		questions[pos].Options.Set(letter, text)
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}

	return questions, nil
}

// Runs lists stored run IDs, oldest first
func (s *SQLiteStore) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

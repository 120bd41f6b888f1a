package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
	_ "modernc.org/sqlite"
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS statements (
	statement_id                TEXT PRIMARY KEY,
	parent_id                   TEXT NOT NULL DEFAULT '',
	creator_id                  TEXT NOT NULL DEFAULT '',
	statement_type              TEXT NOT NULL DEFAULT 'option',
	text                        TEXT NOT NULL DEFAULT '',
	is_cluster                  INTEGER NOT NULL DEFAULT 0,
	integrated_options_json     TEXT NOT NULL DEFAULT '[]',
	integrated_into             TEXT NOT NULL DEFAULT '',
	evaluation_json             TEXT NOT NULL DEFAULT '{}',
	consensus                   REAL NOT NULL DEFAULT 0.0,
	consensus_valid             REAL NOT NULL DEFAULT 0.0,
	total_evaluators            INTEGER NOT NULL DEFAULT 0,
	pro_sum                     REAL NOT NULL DEFAULT 0.0,
	con_sum                     REAL NOT NULL DEFAULT 0.0,
	as_parent_total_evaluators  INTEGER NOT NULL DEFAULT 0,
	popper_json                 TEXT,
	created_at                  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_statements_parent ON statements(parent_id, statement_type);
CREATE INDEX IF NOT EXISTS idx_statements_integrated_into ON statements(integrated_into);

CREATE TABLE IF NOT EXISTS evaluations (
	statement_id TEXT NOT NULL,
	evaluator_id TEXT NOT NULL,
	parent_id    TEXT NOT NULL DEFAULT '',
	value        REAL NOT NULL,
	migrated     INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (statement_id, evaluator_id)
);
CREATE INDEX IF NOT EXISTS idx_evaluations_parent ON evaluations(parent_id);

CREATE TABLE IF NOT EXISTS evidence (
	evidence_id         TEXT PRIMARY KEY,
	parent_id           TEXT NOT NULL,
	creator_id          TEXT NOT NULL DEFAULT '',
	text                TEXT NOT NULL DEFAULT '',
	evidence_type       TEXT NOT NULL DEFAULT '',
	evidence_weight     REAL NOT NULL DEFAULT 0.0,
	corroboration_score REAL NOT NULL DEFAULT 0.5,
	support             REAL NOT NULL DEFAULT 0.0,
	created_at          INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_evidence_parent ON evidence(parent_id, created_at);
`

// SQLite is the modernc.org/sqlite backed store.
type SQLite struct {
	db *sql.DB
}

// NewDB opens a SQLite database at the given path with WAL pragmas and runs
// the schema migration.
func NewDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// single writer; WAL still serves concurrent readers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, model.NewStoreError("open sqlite", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func (s *SQLite) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewStoreError(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		if model.CategoryOf(err) != "" {
			return err
		}
		return model.NewStoreError(op, err)
	}

	if err := tx.Commit(); err != nil {
		return model.NewStoreError(op, err)
	}
	return nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

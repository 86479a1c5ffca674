package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/church-stats/attendance-cli/internal/report"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	corpus     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces the snapshot slot with the given corpus. The corpus must
// round-trip with full fidelity: all columns, date typing and row identity.
func (s *SQLiteStore) Save(ctx context.Context, corpus *report.Corpus) (*Snapshot, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	corpusJSON, err := json.Marshal(corpus)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal corpus")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return nil, eris.Wrap(err, "sqlite: clear snapshot slot")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, corpus, created_at) VALUES (?, ?, ?)`,
		id, string(corpusJSON), now,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert snapshot")
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}

	return &Snapshot{ID: id, Corpus: corpus, CreatedAt: now}, nil
}

// Latest returns the stored snapshot, or ErrNoSnapshot when the slot is
// empty.
func (s *SQLiteStore) Latest(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, corpus, created_at FROM snapshots ORDER BY created_at DESC LIMIT 1`,
	)

	var snap Snapshot
	var corpusJSON string
	err := row.Scan(&snap.ID, &corpusJSON, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan snapshot")
	}

	snap.Corpus = &report.Corpus{}
	if err := json.Unmarshal([]byte(corpusJSON), snap.Corpus); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal corpus")
	}
	return &snap, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/retreat-leads/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path, creating its parent
// directory, and configures WAL mode.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create dir %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS classifications (
	organizer_key TEXT PRIMARY KEY,
	analysis      TEXT NOT NULL,
	cached_at     INTEGER NOT NULL,
	expires_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	scraped     INTEGER NOT NULL DEFAULT 0,
	appended    INTEGER NOT NULL DEFAULT 0,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_classifications_expires_at ON classifications(expires_at);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetClassification returns the cached analysis for organizerKey, or nil if
// there is none or it has expired.
func (s *SQLiteStore) GetClassification(ctx context.Context, organizerKey string) (*model.AIAnalysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT analysis FROM classifications WHERE organizer_key = ? AND expires_at > ?`,
		organizerKey, s.now().Unix(),
	)

	var raw string
	err := row.Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get classification")
	}

	var a model.AIAnalysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal classification")
	}
	return &a, nil
}

// SetClassification stores a, replacing any earlier entry for the key.
func (s *SQLiteStore) SetClassification(ctx context.Context, organizerKey string, a model.AIAnalysis, ttl time.Duration) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal classification")
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO classifications (organizer_key, analysis, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(organizer_key) DO UPDATE SET
		   analysis = excluded.analysis,
		   cached_at = excluded.cached_at,
		   expires_at = excluded.expires_at`,
		organizerKey, string(raw), now.Unix(), now.Add(ttl).Unix(),
	)
	return eris.Wrap(err, "sqlite: set classification")
}

func (s *SQLiteStore) DeleteExpiredClassifications(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM classifications WHERE expires_at <= ?`, s.now().Unix(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired classifications")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) RecordRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		return eris.New("sqlite: run id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, source, status, scraped, appended, started_at, finished_at, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Command, r.Source, r.Status, r.Scraped, r.Appended,
		r.StartedAt.UTC().Unix(), r.FinishedAt.UTC().Unix(), r.Error,
	)
	return eris.Wrapf(err, "sqlite: record run %s", r.ID)
}

// ListRuns returns the most recent runs first. limit <= 0 means 20.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, source, status, scraped, appended, started_at, finished_at, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Command, &r.Source, &r.Status, &r.Scraped, &r.Appended, &started, &finished, &r.Error); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.StartedAt = time.Unix(started, 0).UTC()
		r.FinishedAt = time.Unix(finished, 0).UTC()
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// Package history persists check-run outcomes in a local SQLite database so
// repeated runs against the same CMS can be compared over time.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/tendant/cms-check/pkg/check"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	base_url   TEXT NOT NULL,
	started    TIMESTAMP NOT NULL,
	finished   TIMESTAMP NOT NULL,
	passed     INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	leftovers  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	suite       TEXT NOT NULL,
	check_name  TEXT NOT NULL,
	status      TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
CREATE INDEX IF NOT EXISTS idx_results_suite ON results(suite, status);
`

// Store is a SQLite-backed run archive.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database. An empty path defaults to
// ~/.cms-check/history.db.
func Open(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".cms-check", "history.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordRun stores a completed report and returns the new run's id.
func (s *Store) RecordRun(ctx context.Context, baseURL string, report *check.Report) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	runID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, base_url, started, finished, passed, failed, leftovers)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, baseURL, report.Started.UTC(), report.Finished.UTC(),
		report.Passed(), report.Failed(), len(report.Leftovers))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, res := range report.Results {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO results (run_id, suite, check_name, status, detail, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, res.Suite, res.Check, string(res.Status), res.Detail,
			res.Duration.Milliseconds())
		if err != nil {
			return "", fmt.Errorf("inserting result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RunSummary is one archived run.
type RunSummary struct {
	ID        string
	BaseURL   string
	Started   time.Time
	Finished  time.Time
	Passed    int
	Failed    int
	Leftovers int
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, base_url, started, finished, passed, failed, leftovers
		 FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.BaseURL, &r.Started, &r.Finished,
			&r.Passed, &r.Failed, &r.Leftovers); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FailuresBySuite counts failed checks per suite across all archived runs.
func (s *Store) FailuresBySuite(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT suite, COUNT(*) FROM results WHERE status = ? GROUP BY suite`,
		string(check.StatusFailed))
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var suite string
		var n int
		if err := rows.Scan(&suite, &n); err != nil {
			return nil, fmt.Errorf("scanning failure count: %w", err)
		}
		out[suite] = n
	}
	return out, rows.Err()
}

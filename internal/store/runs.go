// Package store persists a journal of scrape runs in SQLite.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded scrape run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Candidates int
	Extracted  int
	NotFound   int
	Skipped    int
	Status     string // ok, restore-failed, persist-failed or error
	Detail     string
}

// Journal records run outcomes.
type Journal struct {
	db *sql.DB
}

// Open opens (and migrates) the journal database at dbPath.
func Open(dbPath string) (*Journal, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		candidates INTEGER NOT NULL,
		extracted INTEGER NOT NULL,
		not_found INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		status TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := j.db.Exec(schema)
	return err
}

// RecordRun inserts one run row and fills in its ID.
func (j *Journal) RecordRun(r *Run) error {
	res, err := j.db.Exec(`
		INSERT INTO runs (started_at, finished_at, candidates, extracted, not_found, skipped, status, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.StartedAt, r.FinishedAt, r.Candidates, r.Extracted, r.NotFound, r.Skipped, r.Status, r.Detail)
	if err != nil {
		return err
	}

	r.ID, err = res.LastInsertId()
	return err
}

// RecentRuns returns the most recent runs, newest first.
func (j *Journal) RecentRuns(limit int) ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT id, started_at, finished_at, candidates, extracted, not_found, skipped, status, detail
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt,
			&r.Candidates, &r.Extracted, &r.NotFound, &r.Skipped,
			&r.Status, &r.Detail)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

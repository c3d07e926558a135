package tracker

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/moerenett/toppbefaring-services/models/service"
)

const runSchema = `
CREATE TABLE IF NOT EXISTS upload_runs (
	id TEXT PRIMARY KEY,
	folder TEXT NOT NULL,
	operation TEXT NOT NULL,
	scanned INTEGER NOT NULL,
	uploaded INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL
);
`

// RunStore keeps one row per run in a local SQLite file, for the stats
// command.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens or creates the run database at pathToFile. The
// single connection keeps SQLite's writer lock from fighting itself.
func NewRunStore(pathToFile string) (*RunStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", pathToFile)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("Cannot open run database %s: %v", pathToFile, err)
	}
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(runSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Cannot create run table in %s: %v", pathToFile, err)
	}
	return &RunStore{db: db}, nil
}

// SaveRun inserts the run, or replaces it when the run saves itself
// again with final counts.
func (s *RunStore) SaveRun(run *service.RunRecord) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO upload_runs
		 (id, folder, operation, scanned, uploaded, skipped, failed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Folder, run.Operation, run.Scanned, run.Uploaded,
		run.Skipped, run.Failed, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("SaveRun (%s): %v", run.ID, err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (s *RunStore) ListRuns(limit int) ([]*service.RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, folder, operation, scanned, uploaded, skipped, failed,
		 started_at, finished_at
		 FROM upload_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRuns: %v", err)
	}
	defer rows.Close()
	runs := make([]*service.RunRecord, 0)
	for rows.Next() {
		run := &service.RunRecord{}
		err = rows.Scan(&run.ID, &run.Folder, &run.Operation, &run.Scanned,
			&run.Uploaded, &run.Skipped, &run.Failed, &run.StartedAt,
			&run.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("ListRuns: %v", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

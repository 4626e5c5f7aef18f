package warehouse

// runs.go is the run journal. Every pipeline invocation writes one row to
// meta.pipeline_runs at start and updates it as the run moves through its
// states, so operators can reconstruct what happened from the database
// alone.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const runsQualified = "meta.pipeline_runs"

const runsDDL = `CREATE TABLE IF NOT EXISTS ` + runsQualified + ` (
	run_id VARCHAR NOT NULL,
	mode VARCHAR NOT NULL,
	state VARCHAR NOT NULL,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	raw_hash VARCHAR,
	raw_rows BIGINT,
	silver_rows BIGINT,
	fact_rows BIGINT,
	error VARCHAR
)`

// RunRecord is one row of the run journal.
type RunRecord struct {
	ID         uuid.UUID
	Mode       string
	State      string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	RawHash    sql.NullString
	RawRows    sql.NullInt64
	SilverRows sql.NullInt64
	FactRows   sql.NullInt64
	Error      sql.NullString
}

// CreateRun inserts a new journal row for a run that is starting.
func (s *Store) CreateRun(ctx context.Context, id uuid.UUID, mode, state string, startedAt time.Time) error {
	if _, err := s.db.ExecContext(ctx, runsDDL); err != nil {
		return fmt.Errorf("creating %s: %w", runsQualified, err)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+runsQualified+" (run_id, mode, state, started_at) VALUES (?, ?, ?, ?)",
		id.String(), mode, state, startedAt)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", id, err)
	}
	return nil
}

// UpdateRunState moves the run's journal row to a new state.
func (s *Store) UpdateRunState(ctx context.Context, id uuid.UUID, state string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE "+runsQualified+" SET state = ? WHERE run_id = ?",
		state, id.String())
	if err != nil {
		return fmt.Errorf("updating run %s: %w", id, err)
	}
	return nil
}

// FinishRun records the terminal state and final counters for a run. The
// error message is empty on success.
func (s *Store) FinishRun(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE `+runsQualified+` SET
			state = ?, finished_at = ?, raw_hash = ?,
			raw_rows = ?, silver_rows = ?, fact_rows = ?, error = ?
		WHERE run_id = ?`,
		rec.State, rec.FinishedAt, rec.RawHash,
		rec.RawRows, rec.SilverRows, rec.FactRows, rec.Error,
		rec.ID.String())
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", rec.ID, err)
	}
	return nil
}

// LastRun returns the most recently started run, or nil when the journal
// is empty or absent.
func (s *Store) LastRun(ctx context.Context) (*RunRecord, error) {
	exists, err := s.tableExists(ctx, "meta", "pipeline_runs")
	if err != nil || !exists {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, mode, state, started_at, finished_at, raw_hash,
			raw_rows, silver_rows, fact_rows, error
		FROM `+runsQualified+` ORDER BY started_at DESC LIMIT 1`)

	var rec RunRecord
	var rawID string
	err = row.Scan(&rawID, &rec.Mode, &rec.State, &rec.StartedAt, &rec.FinishedAt,
		&rec.RawHash, &rec.RawRows, &rec.SilverRows, &rec.FactRows, &rec.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last run: %w", err)
	}
	if rec.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parsing run id %q: %w", rawID, err)
	}
	return &rec, nil
}

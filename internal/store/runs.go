package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RunIDGenerator produces run IDs. Tests substitute a fixed sequence.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Run is one ledger row per pipeline invocation.
type Run struct {
	ID        string `json:"id"`
	Command   string `json:"command"`
	Status    string `json:"status"`
	Inputs    int    `json:"inputs"`
	Found     int    `json:"found"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Rows      int    `json:"rows"`
}

// DatasetRecord is the outcome of one dataset within a run.
type DatasetRecord struct {
	RunID   string `json:"run_id"`
	Seq     int    `json:"seq"`
	Dir     string `json:"dir"`
	State   string `json:"state"`
	Session string `json:"session"`
	Output  string `json:"output,omitempty"`
	Rows    int    `json:"rows"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// BeginRun inserts a running ledger row.
func (s *Store) BeginRun(ctx context.Context, id, command string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, command, status) VALUES (?, ?, ?)
	`, id, command, StatusRunning)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stores the final counters and status of run.ID.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, inputs = ?, found = ?, processed = ?, skipped = ?, row_count = ?
		WHERE id = ?
	`, run.Status, run.Inputs, run.Found, run.Processed, run.Skipped, run.Rows, run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %q", run.ID)
	}
	return nil
}

// RecordDataset appends a dataset outcome to its run.
// Re-recording the same (run, seq) is ignored.
func (s *Store) RecordDataset(ctx context.Context, rec DatasetRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO datasets (run_id, seq, dir, state, session, output, row_count, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`, rec.RunID, rec.Seq, rec.Dir, rec.State, rec.Session, rec.Output, rec.Rows, rec.Status, rec.Error)
	if err != nil {
		return fmt.Errorf("record dataset: %w", err)
	}
	return nil
}

// Runs returns every run ordered by ID.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, command, status, inputs, found, processed, skipped, row_count
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Command, &r.Status, &r.Inputs, &r.Found, &r.Processed, &r.Skipped, &r.Rows); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Datasets returns the dataset outcomes of one run in processing order.
func (s *Store) Datasets(ctx context.Context, runID string) ([]DatasetRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, dir, state, session, output, row_count, status, error
		FROM datasets
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	records := []DatasetRecord{}
	for rows.Next() {
		var d DatasetRecord
		if err := rows.Scan(&d.RunID, &d.Seq, &d.Dir, &d.State, &d.Session, &d.Output, &d.Rows, &d.Status, &d.Error); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		records = append(records, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate datasets: %w", err)
	}
	return records, nil
}

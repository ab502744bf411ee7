package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/table"
)

// StateCount is the number of corpus rows for one state.
type StateCount struct {
	State string `json:"state"`
	Rows  int    `json:"rows"`
}

// LoadCorpus replaces the indexed corpus with the rows of t and returns how
// many were stored. t must carry state and bill_id columns; every row is
// stored as a JSON object keyed by column name.
func (s *Store) LoadCorpus(ctx context.Context, t *table.Table) (int, error) {
	if err := t.Require(legis.ColState, legis.ColBillID); err != nil {
		return 0, err
	}
	stateIdx := t.Index(legis.ColState)
	billIdx := t.Index(legis.ColBillID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("load corpus: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_rows`); err != nil {
		return 0, fmt.Errorf("load corpus: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO corpus_rows (state, bill_id, record) VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("load corpus: prepare: %w", err)
	}
	defer stmt.Close()

	record := make(map[string]string, len(t.Header))
	for i, row := range t.Rows {
		for j, col := range t.Header {
			record[col] = row[j]
		}
		// Maps marshal with sorted keys, so equal rows give equal records.
		data, err := json.Marshal(record)
		if err != nil {
			return 0, fmt.Errorf("load corpus: row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, row[stateIdx], row[billIdx], string(data)); err != nil {
			return 0, fmt.Errorf("load corpus: row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("load corpus: commit: %w", err)
	}
	return len(t.Rows), nil
}

// CountCorpusRows returns the number of indexed corpus rows.
func (s *Store) CountCorpusRows(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corpus_rows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count corpus rows: %w", err)
	}
	return n, nil
}

// CorpusRowsByState returns per-state row counts ordered by state.
func (s *Store) CorpusRowsByState(ctx context.Context) ([]StateCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state, COUNT(*)
		FROM corpus_rows
		GROUP BY state
		ORDER BY state COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query corpus states: %w", err)
	}
	defer rows.Close()

	counts := []StateCount{}
	for rows.Next() {
		var c StateCount
		if err := rows.Scan(&c.State, &c.Rows); err != nil {
			return nil, fmt.Errorf("scan corpus state: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus states: %w", err)
	}
	return counts, nil
}

// CorpusRecords returns the stored records for one bill in insertion order.
func (s *Store) CorpusRecords(ctx context.Context, state, billID string) ([]map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record FROM corpus_rows
		WHERE state = ? AND bill_id = ?
		ORDER BY id ASC
	`, state, billID)
	if err != nil {
		return nil, fmt.Errorf("query corpus records: %w", err)
	}
	defer rows.Close()

	records := []map[string]string{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan corpus record: %w", err)
		}
		var rec map[string]string
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode corpus record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus records: %w", err)
	}
	return records, nil
}

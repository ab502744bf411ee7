// Package pipeline runs the archive-to-corpus workflow: resolve each input to
// a directory, discover its datasets, aggregate each dataset to the combined
// directory and finally build the deduplicated corpus.
//
// Failures are scoped. A bad input is logged and the next input is tried; a
// bad dataset is logged and skipped. Only finding no dataset at all, a
// failing corpus build or cancellation fails the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/legicorpus/internal/aggregate"
	"github.com/roach88/legicorpus/internal/archive"
	"github.com/roach88/legicorpus/internal/config"
	"github.com/roach88/legicorpus/internal/corpus"
	"github.com/roach88/legicorpus/internal/dataset"
	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/store"
)

// Options holds optional collaborators for Run.
type Options struct {
	// SkipCombine stops after the per-dataset outputs.
	SkipCombine bool

	// Store records the run when non-nil.
	Store *store.Store

	// RunIDs overrides the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	RunIDs store.RunIDGenerator

	// Progress receives "[i/N] dir" lines. Nil discards them.
	Progress io.Writer
}

// Summary is the outcome of one Run.
type Summary struct {
	RunID       string                `json:"run_id"`
	Inputs      int                   `json:"inputs"`
	InputErrors int                   `json:"input_errors"`
	Found       int                   `json:"found"`
	Processed   int                   `json:"processed"`
	Skipped     int                   `json:"skipped"`
	Rows        int                   `json:"rows"`
	Datasets    []store.DatasetRecord `json:"datasets"`
	Corpus      *corpus.CombineResult `json:"corpus,omitempty"`
}

// Run processes inputs, or cfg.DefaultInputs when inputs is empty.
//
// The context is checked before each input and each dataset; cancellation
// stops the run at that boundary and returns the context error.
func Run(ctx context.Context, cfg config.Config, inputs []string, opts Options) (Summary, error) {
	if len(inputs) == 0 {
		defaults, err := cfg.DefaultInputs()
		if err != nil {
			return Summary{}, err
		}
		inputs = defaults
	}

	gen := opts.RunIDs
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	r := &runner{
		ctx:      ctx,
		ledger:   context.WithoutCancel(ctx),
		store:    opts.Store,
		progress: progress,
		summary: Summary{
			RunID:    gen.Generate(),
			Inputs:   len(inputs),
			Datasets: []store.DatasetRecord{},
		},
	}
	r.begin()

	err := r.run(cfg, inputs, opts.SkipCombine)
	r.finish(err)
	return r.summary, err
}

type runner struct {
	ctx context.Context

	// ledger outlives cancellation so a stopped run is still recorded.
	ledger context.Context

	store    *store.Store
	progress io.Writer
	summary  Summary
}

func (r *runner) run(cfg config.Config, inputs []string, skipCombine bool) error {
	var inputErrs []error
	var dirs []string
	for _, input := range inputs {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		found, err := r.discover(input)
		if err != nil {
			slog.Error("input failed", "path", input, "error", err)
			inputErrs = append(inputErrs, err)
			continue
		}
		dirs = append(dirs, found...)
	}
	r.summary.InputErrors = len(inputErrs)
	r.summary.Found = len(dirs)

	if len(dirs) == 0 {
		noneErr := legis.NewError(legis.CodeNoValidDatasets, "", "no valid datasets found")
		return errors.Join(append([]error{noneErr}, inputErrs...)...)
	}

	for i, dir := range dirs {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(r.progress, "[%d/%d] %s\n", i+1, len(dirs), dir)
		r.process(i+1, dir, cfg.CombinedDir)
	}

	if skipCombine {
		return nil
	}
	res, err := corpus.Combine(cfg.CombinedDir, cfg.CorpusPath)
	if err != nil {
		return fmt.Errorf("build corpus: %w", err)
	}
	r.summary.Corpus = &res
	return nil
}

// discover resolves input to a directory and lists its datasets.
func (r *runner) discover(input string) ([]string, error) {
	dir, err := archive.Resolve(input)
	if err != nil {
		return nil, err
	}
	dirs, err := dataset.Discover(dir)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		slog.Warn("no datasets found", "path", dir)
	}
	slog.Debug("input resolved", "path", input, "dir", dir, "datasets", len(dirs))
	return dirs, nil
}

// process aggregates one dataset. A failure skips the dataset.
func (r *runner) process(seq int, dir, outDir string) {
	res, err := aggregate.Process(dir, outDir)
	rec := store.DatasetRecord{
		RunID:   r.summary.RunID,
		Seq:     seq,
		Dir:     dir,
		State:   res.Location.State,
		Session: res.Location.Session,
	}
	if err != nil {
		slog.Error("skipping dataset", "path", dir, "error", err)
		rec.Status = store.StatusSkipped
		rec.Error = err.Error()
		r.summary.Skipped++
	} else {
		fmt.Fprintf(r.progress, "  -> %s (%d rows)\n", res.Output, res.Rows)
		rec.Status = store.StatusOK
		rec.Output = res.Output
		rec.Rows = res.Rows
		r.summary.Processed++
		r.summary.Rows += res.Rows
	}
	r.summary.Datasets = append(r.summary.Datasets, rec)

	if r.store != nil {
		if err := r.store.RecordDataset(r.ledger, rec); err != nil {
			slog.Warn("ledger write failed", "path", dir, "error", err)
		}
	}
}

func (r *runner) begin() {
	if r.store == nil {
		return
	}
	if err := r.store.BeginRun(r.ledger, r.summary.RunID, "join"); err != nil {
		slog.Warn("ledger write failed", "run", r.summary.RunID, "error", err)
	}
}

func (r *runner) finish(runErr error) {
	if r.store == nil {
		return
	}
	status := store.StatusOK
	if runErr != nil {
		status = store.StatusFailed
	}
	err := r.store.FinishRun(r.ledger, store.Run{
		ID:        r.summary.RunID,
		Status:    status,
		Inputs:    r.summary.Inputs,
		Found:     r.summary.Found,
		Processed: r.summary.Processed,
		Skipped:   r.summary.Skipped,
		Rows:      r.summary.Rows,
	})
	if err != nil {
		slog.Warn("ledger write failed", "run", r.summary.RunID, "error", err)
	}
}

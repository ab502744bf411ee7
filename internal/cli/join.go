package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/pipeline"
	"github.com/roach88/legicorpus/internal/store"
)

// JoinOptions holds flags for the join command.
type JoinOptions struct {
	*RootOptions
	SkipCombine bool

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	RunIDs store.RunIDGenerator
}

// NewJoinCommand creates the join command.
func NewJoinCommand(rootOpts *RootOptions) *cobra.Command {
	return newJoinCommand(&JoinOptions{RootOptions: rootOpts})
}

func newJoinCommand(opts *JoinOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join [paths...]",
		Short: "Aggregate every dataset to one row per bill and build the corpus",
		Long: `Aggregate legislative bulk datasets to one row per bill.

Each path is a .zip archive or a directory (with or without the .zip suffix).
Archives are extracted next to themselves when the directory is missing or
older than the archive. Every dataset directory found beneath a path is
aggregated into <combined_dir>/<STATE>_<session>.csv; the outputs are then
combined into the deduplicated corpus at corpus_path.

With no paths, every *.zip under bulk_root is processed.

Example:
  legicorpus join
  legicorpus join datasources/legiscan-bulk-csv/2023-2024.zip --db ledger.db
  legicorpus join ./extracted --skip-combine`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SkipCombine, "skip-combine", false, "stop after the per-dataset outputs")

	return cmd
}

func runJoin(opts *JoinOptions, inputs []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.prepare(cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid configuration", err)
	}

	st, closeStore, err := openStore(cfg.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, "ledger unavailable", err)
	}
	defer closeStore()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	sum, err := pipeline.Run(ctx, cfg, inputs, pipeline.Options{
		SkipCombine: opts.SkipCombine,
		Store:       st,
		RunIDs:      opts.RunIDs,
		Progress:    formatter.Progress(),
	})
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		return formatter.Fail(ExitFailure, "interrupted", err)
	case legis.IsCode(err, legis.CodeNoValidDatasets):
		return formatter.Fail(ExitFailure, "no valid datasets", err)
	default:
		return formatter.Fail(ExitFailure, "join failed", err)
	}

	return formatter.Report(sum, joinText(sum, st != nil))
}

func joinText(sum pipeline.Summary, ledger bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Datasets: %s found, %s processed, %s skipped\n",
		humanize.Comma(int64(sum.Found)), humanize.Comma(int64(sum.Processed)), humanize.Comma(int64(sum.Skipped)))
	if sum.InputErrors > 0 {
		fmt.Fprintf(&b, "Inputs: %d of %d failed\n", sum.InputErrors, sum.Inputs)
	}
	fmt.Fprintf(&b, "Rows written: %s\n", humanize.Comma(int64(sum.Rows)))
	if sum.Corpus != nil {
		b.WriteString(corpusText(*sum.Corpus))
	}
	if ledger {
		fmt.Fprintf(&b, "Run: %s\n", sum.RunID)
	}
	return b.String()
}

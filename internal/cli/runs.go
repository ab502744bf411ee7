package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded join runs, or the datasets of one run",
		Long: `Show the run ledger. Without arguments every recorded join run is listed
oldest first; with a run ID the outcome of each of its datasets is shown.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runRuns(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.prepare(cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid configuration", err)
	}
	if cfg.Database == "" {
		err := NewExitError(ExitCommandError, "no database configured: pass --db or set database in config")
		_ = formatter.Error(ErrCodeCommand, err.Message, nil)
		return err
	}

	st, closeStore, err := openStore(cfg.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, "ledger unavailable", err)
	}
	defer closeStore()

	ctx := cmd.Context()
	var b strings.Builder

	if len(args) == 1 {
		datasets, err := st.Datasets(ctx, args[0])
		if err != nil {
			return formatter.Fail(ExitFailure, "reading ledger", err)
		}
		for _, d := range datasets {
			fmt.Fprintf(&b, "%3d %-8s %s", d.Seq, d.Status, d.Dir)
			if d.Error != "" {
				fmt.Fprintf(&b, " (%s)", d.Error)
			} else {
				fmt.Fprintf(&b, " -> %s (%s rows)", d.Output, humanize.Comma(int64(d.Rows)))
			}
			b.WriteString("\n")
		}
		if len(datasets) == 0 {
			fmt.Fprintf(&b, "No datasets recorded for run %s\n", args[0])
		}
		return formatter.Report(datasets, b.String())
	}

	runs, err := st.Runs(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, "reading ledger", err)
	}
	for _, r := range runs {
		fmt.Fprintf(&b, "%s %-7s %s/%s datasets, %s skipped, %s rows\n",
			r.ID, r.Status, humanize.Comma(int64(r.Processed)), humanize.Comma(int64(r.Found)),
			humanize.Comma(int64(r.Skipped)), humanize.Comma(int64(r.Rows)))
	}
	if len(runs) == 0 {
		b.WriteString("No runs recorded\n")
	}
	return formatter.Report(runs, b.String())
}

package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/legicorpus/internal/legis"
)

// NewBillCommand creates the bill command.
func NewBillCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill <state> <bill-id>",
		Short: "Show the loaded corpus rows of one bill",
		Long: `Look up a bill in the corpus rows indexed by load. A bill appears once per
distinct corpus row that carries its state and bill_id.

Example:
  legicorpus bill AK 1001 --db ledger.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBill(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runBill(opts *RootOptions, state, billID string, cmd *cobra.Command) error {
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

	records, err := st.CorpusRecords(cmd.Context(), strings.ToUpper(state), billID)
	if err != nil {
		return formatter.Fail(ExitFailure, "reading corpus", err)
	}
	if len(records) == 0 {
		return formatter.Fail(ExitFailure, "bill not found",
			fmt.Errorf("no corpus rows for %s %s (run load first)", strings.ToUpper(state), billID))
	}

	var b strings.Builder
	for i, rec := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, col := range recordColumns(rec) {
			fmt.Fprintf(&b, "%-20s %s\n", col+":", rec[col])
		}
	}
	return formatter.Report(records, b.String())
}

// recordColumns orders state and bill_id first, then the rest by name.
func recordColumns(rec map[string]string) []string {
	cols := make([]string, 0, len(rec))
	for col := range rec {
		if col != legis.ColState && col != legis.ColBillID {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	return append([]string{legis.ColState, legis.ColBillID}, cols...)
}

package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/store"
	"github.com/roach88/legicorpus/internal/table"
)

// LoadResult is the outcome of the load command.
type LoadResult struct {
	Corpus   string             `json:"corpus"`
	Database string             `json:"database"`
	Rows     int                `json:"rows"`
	States   []store.StateCount `json:"states"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [corpus.csv]",
		Short: "Index a corpus CSV in the SQLite ledger",
		Long: `Replace the corpus rows held in the ledger with the rows of a corpus CSV
(corpus_path by default). Requires a database via --db or config.

Example:
  legicorpus load --db ledger.db
  legicorpus load --db ledger.db ./all_bills.csv`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runLoad(opts *RootOptions, args []string, cmd *cobra.Command) error {
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

	path := cfg.CorpusPath
	if len(args) == 1 {
		path = args[0]
	}

	st, closeStore, err := openStore(cfg.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, "ledger unavailable", err)
	}
	defer closeStore()

	t, err := table.Read(path, legis.ColState, legis.ColBillID)
	if err != nil {
		return formatter.Fail(ExitFailure, "reading corpus", err)
	}

	ctx := cmd.Context()
	n, err := st.LoadCorpus(ctx, t)
	if err != nil {
		return formatter.Fail(ExitFailure, "loading corpus", err)
	}
	stored, err := st.CountCorpusRows(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, "counting corpus rows", err)
	}
	if stored != n {
		return formatter.Fail(ExitFailure, "loading corpus",
			fmt.Errorf("ledger holds %d rows after loading %d", stored, n))
	}
	states, err := st.CorpusRowsByState(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, "summarizing corpus", err)
	}

	res := LoadResult{Corpus: path, Database: cfg.Database, Rows: n, States: states}

	var b strings.Builder
	fmt.Fprintf(&b, "Loaded %s rows from %s into %s\n", humanize.Comma(int64(n)), path, cfg.Database)
	for _, s := range states {
		fmt.Fprintf(&b, "  %-4s %s\n", s.State, humanize.Comma(int64(s.Rows)))
	}
	return formatter.Report(res, b.String())
}

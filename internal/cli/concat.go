package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/legicorpus/internal/pipeline"
)

// ConcatOptions holds flags for the concat command.
type ConcatOptions struct {
	*RootOptions
	Overwrite bool
}

// NewConcatCommand creates the concat command.
func NewConcatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConcatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "concat <path>",
		Short: "Stream every raw bills table into one state-tagged CSV",
		Long: `Concatenate the raw bills table of every dataset under one archive or
directory into concatenated-<name>/all-bills.csv next to it, appending a
state column to each row.

When the output already exists you are asked before it is replaced,
unless --overwrite is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConcat(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace an existing output without asking")

	return cmd
}

func runConcat(opts *ConcatOptions, input string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.prepare(cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid configuration", err)
	}

	output := pipeline.RawOutput(input)
	if _, err := os.Stat(output); err == nil && !opts.Overwrite {
		ok, err := confirm(cmd.InOrStdin(), formatter.Progress(),
			fmt.Sprintf("Output file %s already exists. Overwrite? [y/N]: ", output))
		if err != nil {
			return formatter.Fail(ExitCommandError, "reading answer", err)
		}
		if !ok {
			fmt.Fprintln(formatter.Progress(), "Stopping.")
			return nil
		}
	}

	res, err := pipeline.Concat(cfg, input)
	if err != nil {
		return formatter.Fail(ExitFailure, "concat failed", err)
	}
	if res.Files == 0 && res.Skipped == 0 {
		return formatter.Report(res, fmt.Sprintf("No %s tables found under %s\n", cfg.RawTable, input))
	}

	text := fmt.Sprintf("Wrote %s rows from %s files to %s\n",
		humanize.Comma(int64(res.Rows)), humanize.Comma(int64(res.Files)), res.Output)
	if res.Skipped > 0 {
		text += fmt.Sprintf("Skipped %d unreadable files\n", res.Skipped)
	}
	return formatter.Report(res, text)
}

// confirm asks question on w and reports whether the answer read from r is
// yes. End of input counts as no.
func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprint(w, question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

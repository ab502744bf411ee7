package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/legicorpus/internal/corpus"
	"github.com/roach88/legicorpus/internal/pipeline"
)

// NewCombineCommand creates the combine command.
func NewCombineCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Combine per-dataset outputs into the deduplicated corpus",
		Long: `Concatenate every CSV in combined_dir, drop rows identical to an
earlier row and write the result to corpus_path.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCombine(rootOpts, cmd)
		},
	}

	return cmd
}

func runCombine(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.prepare(cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid configuration", err)
	}

	res, err := pipeline.Combine(cfg)
	if err != nil {
		return formatter.Fail(ExitFailure, "combine failed", err)
	}
	if res.Files == 0 {
		return formatter.Report(res, fmt.Sprintf("No dataset outputs found in %s\n", cfg.CombinedDir))
	}
	return formatter.Report(res, corpusText(res))
}

func corpusText(res corpus.CombineResult) string {
	if res.Files == 0 {
		return "Corpus: no dataset outputs to combine\n"
	}
	size := ""
	if info, err := os.Stat(res.Output); err == nil {
		size = ", " + humanize.Bytes(uint64(info.Size()))
	}
	return fmt.Sprintf("Corpus: %s (%s rows from %s files, %s duplicates removed%s)\n",
		res.Output, humanize.Comma(int64(res.After)), humanize.Comma(int64(res.Files)),
		humanize.Comma(int64(res.Removed)), size)
}

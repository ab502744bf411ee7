package pipeline

import (
	"github.com/roach88/legicorpus/internal/archive"
	"github.com/roach88/legicorpus/internal/config"
	"github.com/roach88/legicorpus/internal/corpus"
)

// RawOutput returns where Concat writes for input.
func RawOutput(input string) string {
	return corpus.RawOutputPath(input)
}

// Concat resolves input and streams every raw table beneath it into
// RawOutput(input), tagging rows with their state.
func Concat(cfg config.Config, input string) (corpus.StreamResult, error) {
	dir, err := archive.Resolve(input)
	if err != nil {
		return corpus.StreamResult{Output: RawOutput(input)}, err
	}
	return corpus.StreamConcat(dir, RawOutput(input), corpus.StreamOptions{
		TableDir:  cfg.TableDir,
		TableName: cfg.RawTable,
	})
}

// Combine builds the corpus from the outputs already in cfg.CombinedDir.
func Combine(cfg config.Config) (corpus.CombineResult, error) {
	return corpus.Combine(cfg.CombinedDir, cfg.CorpusPath)
}

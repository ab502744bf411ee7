package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legicorpus/internal/table"
)

func TestCombine_Text(t *testing.T) {
	opts, cfg := testEnv(t, "text")
	require.NoError(t, table.Write(filepath.Join(cfg.CombinedDir, "AK_2021.csv"), &table.Table{
		Header: []string{"state", "bill_id"},
		Rows:   [][]string{{"AK", "1"}, {"AK", "2"}},
	}))
	require.NoError(t, table.Write(filepath.Join(cfg.CombinedDir, "AK_2022.csv"), &table.Table{
		Header: []string{"state", "bill_id"},
		Rows:   [][]string{{"AK", "2"}, {"AK", "3"}},
	}))

	stdout, _, err := execute(NewCombineCommand(opts), "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Corpus: "+cfg.CorpusPath+" (3 rows from 2 files, 1 duplicates removed")

	corpus, err := table.Read(cfg.CorpusPath)
	require.NoError(t, err)
	assert.Len(t, corpus.Rows, 3)
}

func TestCombine_Empty(t *testing.T) {
	opts, cfg := testEnv(t, "text")

	stdout, _, err := execute(NewCombineCommand(opts), "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No dataset outputs found")
	assert.NoFileExists(t, cfg.CorpusPath)
}

func TestCombine_RejectsArgs(t *testing.T) {
	opts, _ := testEnv(t, "text")
	_, _, err := execute(NewCombineCommand(opts), "", "extra")
	assert.Error(t, err)
}

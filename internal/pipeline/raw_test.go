package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/table"
	"github.com/roach88/legicorpus/internal/testutil"
)

func TestConcat_Archive(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	dir := t.TempDir()
	entries := testutil.DatasetEntries("AK/2021/csv", testutil.ScenarioTables())
	entries = append(entries, testutil.DatasetEntries("TX/2022/csv", testutil.Tables{
		legis.BillsTable: "bill_id,bill_number,title\n7,SB7,Water Rights\n",
	})...)
	input := testutil.WriteZip(t, filepath.Join(dir, "2021-2022.zip"), entries)

	res, err := Concat(cfg, input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "concatenated-2021-2022", "all-bills.csv"), res.Output)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 3, res.Rows)

	out, err := table.Read(res.Output)
	require.NoError(t, err)
	assert.Equal(t, []string{"bill_id", "bill_number", "title", "state"}, out.Header)
	assert.Equal(t, []string{"7", "SB7", "Water Rights", "TX"}, out.Rows[2])
}

func TestConcat_MissingSource(t *testing.T) {
	cfg := testConfig(t)
	_, err := Concat(cfg, filepath.Join(t.TempDir(), "gone.zip"))
	require.Error(t, err)
	assert.True(t, legis.IsCode(err, legis.CodeSourceNotFound))
}

func TestCombine_UsesConfiguredPaths(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	require.NoError(t, table.Write(filepath.Join(cfg.CombinedDir, "AK_2021.csv"), &table.Table{
		Header: []string{"state", "bill_id"},
		Rows:   [][]string{{"AK", "1"}, {"AK", "1"}, {"AK", "2"}},
	}))

	res, err := Combine(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.CorpusPath, res.Output)
	assert.Equal(t, 3, res.Before)
	assert.Equal(t, 2, res.After)
	assert.Equal(t, 1, res.Removed)
}

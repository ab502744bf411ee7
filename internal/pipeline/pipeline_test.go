package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legicorpus/internal/config"
	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/store"
	"github.com/roach88/legicorpus/internal/table"
	"github.com/roach88/legicorpus/internal/testutil"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	out := t.TempDir()
	cfg := config.Default()
	cfg.BulkRoot = filepath.Join(out, "bulk")
	cfg.CombinedDir = filepath.Join(out, "combined")
	cfg.CorpusPath = filepath.Join(out, "corpus", "all_bills.csv")
	return cfg
}

func TestRun_DirectoryInput(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	root := t.TempDir()
	testutil.WriteDataset(t, testutil.DatasetDir(root, "AK", "2021-2022"), testutil.ScenarioTables())
	testutil.WriteDataset(t, testutil.DatasetDir(root, "TX", "2023"), testutil.MinimalTables())

	var progress bytes.Buffer
	sum, err := Run(context.Background(), cfg, []string{root}, Options{Progress: &progress})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Inputs)
	assert.Equal(t, 2, sum.Found)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 0, sum.Skipped)
	assert.Equal(t, 2, sum.Rows)

	akOut := filepath.Join(cfg.CombinedDir, "AK_2021-2022.csv")
	txOut := filepath.Join(cfg.CombinedDir, "TX_2023.csv")
	assert.FileExists(t, akOut)
	assert.FileExists(t, txOut)

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Contains(t, progress.String(), "[1/2] "+filepath.Join(absRoot, "AK", "2021-2022", "csv"))
	assert.Contains(t, progress.String(), "[2/2] ")
	assert.Contains(t, progress.String(), "-> "+akOut+" (2 rows)")

	require.NotNil(t, sum.Corpus)
	assert.Equal(t, 2, sum.Corpus.After)
	corpusTable, err := table.Read(cfg.CorpusPath)
	require.NoError(t, err)
	assert.Len(t, corpusTable.Rows, 2)
	assert.Equal(t, legis.ColState, corpusTable.Header[0])
}

func TestRun_ArchiveInput(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	archive := testutil.WriteZip(t, filepath.Join(t.TempDir(), "2021-2022.zip"),
		testutil.DatasetEntries("Alaska/2021-2022/csv", testutil.ScenarioTables()))

	sum, err := Run(context.Background(), cfg, []string{archive}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)
	assert.FileExists(t, filepath.Join(cfg.CombinedDir, "Alaska_2021-2022.csv"))
	assert.FileExists(t, cfg.CorpusPath)
}

func TestRun_DefaultInputsFromBulkRoot(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	testutil.WriteZip(t, filepath.Join(cfg.BulkRoot, "bulk.zip"),
		testutil.DatasetEntries("AK/2021/csv", testutil.ScenarioTables()))

	sum, err := Run(context.Background(), cfg, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Inputs)
	assert.Equal(t, 1, sum.Processed)
}

func TestRun_BadDatasetIsSkipped(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	root := t.TempDir()
	testutil.WriteDataset(t, testutil.DatasetDir(root, "AK", "2021"), testutil.ScenarioTables())
	bad := testutil.MinimalTables()
	bad[legis.SponsorsTable] = "bill_id,people_id\n"
	testutil.WriteDataset(t, testutil.DatasetDir(root, "TX", "2021"), bad)

	sum, err := Run(context.Background(), cfg, []string{root}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Found)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 1, sum.Skipped)

	require.Len(t, sum.Datasets, 2)
	assert.Equal(t, store.StatusOK, sum.Datasets[0].Status)
	assert.Equal(t, store.StatusSkipped, sum.Datasets[1].Status)
	assert.Contains(t, sum.Datasets[1].Error, string(legis.CodeTableParse))
	assert.NoFileExists(t, filepath.Join(cfg.CombinedDir, "TX_2021.csv"))
}

func TestRun_NoValidDatasets(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	empty := t.TempDir()
	missing := filepath.Join(t.TempDir(), "nowhere")

	sum, err := Run(context.Background(), cfg, []string{empty, missing}, Options{})
	require.Error(t, err)
	assert.True(t, legis.IsCode(err, legis.CodeNoValidDatasets))
	assert.True(t, legis.IsCode(err, legis.CodeSourceNotFound))
	assert.Equal(t, 1, sum.InputErrors)
	assert.Equal(t, 0, sum.Found)
	assert.NoFileExists(t, cfg.CorpusPath)
}

func TestRun_SymlinkedInputDirectory(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	tmp := t.TempDir()
	target := filepath.Join(tmp, "real-2021")
	testutil.WriteDataset(t, testutil.DatasetDir(target, "AK", "2021-2022"), testutil.ScenarioTables())
	link := filepath.Join(tmp, "bulk-2021")
	require.NoError(t, os.Symlink(target, link))

	sum, err := Run(context.Background(), cfg, []string{link}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Found)
	assert.Equal(t, 1, sum.Processed)
	assert.FileExists(t, filepath.Join(cfg.CombinedDir, "AK_2021-2022.csv"))
}

func TestRun_BadInputDoesNotStopOthers(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	root := t.TempDir()
	testutil.WriteDataset(t, testutil.DatasetDir(root, "AK", "2021"), testutil.ScenarioTables())

	sum, err := Run(context.Background(), cfg, []string{filepath.Join(root, "missing"), root}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.InputErrors)
	assert.Equal(t, 1, sum.Processed)
}

func TestRun_SkipCombine(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	root := t.TempDir()
	testutil.WriteDataset(t, testutil.DatasetDir(root, "AK", "2021"), testutil.ScenarioTables())

	sum, err := Run(context.Background(), cfg, []string{root}, Options{SkipCombine: true})
	require.NoError(t, err)
	assert.Nil(t, sum.Corpus)
	assert.FileExists(t, filepath.Join(cfg.CombinedDir, "AK_2021.csv"))
	assert.NoFileExists(t, cfg.CorpusPath)
}

func TestRun_Cancelled(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	root := t.TempDir()
	testutil.WriteDataset(t, testutil.DatasetDir(root, "AK", "2021"), testutil.ScenarioTables())

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := Run(ctx, cfg, []string{root}, Options{Store: st, RunIDs: testutil.NewFixedRunIDs("run-1")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sum.Processed)

	runs, err := st.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusFailed, runs[0].Status)
}

func TestRun_RecordsLedger(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	root := t.TempDir()
	testutil.WriteDataset(t, testutil.DatasetDir(root, "AK", "2021"), testutil.ScenarioTables())
	testutil.WriteDataset(t, testutil.DatasetDir(root, "TX", "2021"), testutil.MinimalTables())

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	sum, err := Run(ctx, cfg, []string{root}, Options{Store: st, RunIDs: testutil.NewFixedRunIDs("run-1")})
	require.NoError(t, err)
	assert.Equal(t, "run-1", sum.RunID)

	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.Run{
		ID: "run-1", Command: "join", Status: store.StatusOK,
		Inputs: 1, Found: 2, Processed: 2, Skipped: 0, Rows: 2,
	}, runs[0])

	datasets, err := st.Datasets(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "AK", datasets[0].State)
	assert.Equal(t, "2021", datasets[0].Session)
	assert.Equal(t, 2, datasets[0].Rows)
	assert.Equal(t, "TX", datasets[1].State)
}

func TestRun_RerunIsByteIdentical(t *testing.T) {
	testutil.SilenceLogs(t)
	cfg := testConfig(t)
	root := t.TempDir()
	testutil.WriteDataset(t, testutil.DatasetDir(root, "AK", "2021"), testutil.ScenarioTables())

	_, err := Run(context.Background(), cfg, []string{root}, Options{})
	require.NoError(t, err)
	first, err := os.ReadFile(cfg.CorpusPath)
	require.NoError(t, err)

	_, err = Run(context.Background(), cfg, []string{root}, Options{})
	require.NoError(t, err)
	second, err := os.ReadFile(cfg.CorpusPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

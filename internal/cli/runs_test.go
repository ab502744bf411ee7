package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/store"
	"github.com/roach88/legicorpus/internal/testutil"
)

func TestRuns_Empty(t *testing.T) {
	opts, _ := testEnv(t, "text")
	opts.Database = filepath.Join(t.TempDir(), "ledger.db")

	stdout, _, err := execute(NewRunsCommand(opts), "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs recorded")
}

func TestRuns_DatasetsOfRun(t *testing.T) {
	opts, _ := testEnv(t, "json")
	opts.Database = filepath.Join(t.TempDir(), "ledger.db")
	root := t.TempDir()
	testutil.WriteDataset(t, testutil.DatasetDir(root, "AK", "2021"), testutil.ScenarioTables())
	bad := testutil.MinimalTables()
	bad[legis.HistoryTable] = "bill_id,date\n"
	testutil.WriteDataset(t, testutil.DatasetDir(root, "TX", "2021"), bad)

	joinCmd := newJoinCommand(&JoinOptions{RootOptions: opts, RunIDs: testutil.NewFixedRunIDs("run-1")})
	_, _, err := execute(joinCmd, "", root)
	require.NoError(t, err)

	stdout, _, err := execute(NewRunsCommand(opts), "", "run-1")
	require.NoError(t, err)

	var resp struct {
		Status string                `json:"status"`
		Data   []store.DatasetRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, store.StatusOK, resp.Data[0].Status)
	assert.Equal(t, store.StatusSkipped, resp.Data[1].Status)
	assert.Contains(t, resp.Data[1].Error, "TABLE_PARSE_ERROR")
}

func TestRuns_RequiresDatabase(t *testing.T) {
	opts, _ := testEnv(t, "text")

	_, _, err := execute(NewRunsCommand(opts), "")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

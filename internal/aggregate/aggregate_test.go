package aggregate

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/table"
	"github.com/roach88/legicorpus/internal/testutil"
)

// record returns the output row for billID as a column→value map.
func record(t *testing.T, tbl *table.Table, billID string) map[string]string {
	t.Helper()
	idx := tbl.Index(legis.ColBillID)
	for _, row := range tbl.Rows {
		if row[idx] == billID {
			m := make(map[string]string, len(row))
			for i, h := range tbl.Header {
				m[h] = row[i]
			}
			return m
		}
	}
	t.Fatalf("bill %s not found", billID)
	return nil
}

func scenarioDir(t *testing.T) string {
	return testutil.WriteDataset(t, testutil.DatasetDir(t.TempDir(), "AK", "2021-2022_32nd"), testutil.ScenarioTables())
}

func TestDataset_Scenario(t *testing.T) {
	out, err := Dataset(scenarioDir(t))
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)

	a := record(t, out, "101")
	assert.Equal(t, "AK", a[legis.ColState])
	assert.Equal(t, "2", a[legis.ColSponsorCount])
	assert.Equal(t, "Ann Lee", a[legis.ColPrimarySponsor])
	assert.Equal(t, "Ann Lee | Bob Ray", a[legis.ColSponsorNames])
	assert.Equal(t, "D | R", a[legis.ColSponsorParties])
	assert.Equal(t, "3", a[legis.ColActionCount])
	assert.Equal(t, "Passed House", a[legis.ColLastHistoryAction])
	assert.Equal(t, "1", a[legis.ColDocumentCount])
	assert.Equal(t, "2", a[legis.ColRollCallCount])
	assert.Equal(t, "42", a[legis.ColTotalYea])
	assert.Equal(t, "13", a[legis.ColTotalNay])

	b := record(t, out, "102")
	assert.Equal(t, "1", b[legis.ColSponsorCount])
	assert.Equal(t, "", b[legis.ColPrimarySponsor])
	assert.Equal(t, "", b[legis.ColSponsorParties], "blank party is not joined")
	assert.Equal(t, "0", b[legis.ColDocumentCount])
	assert.Equal(t, "0", b[legis.ColActionCount])
	assert.Equal(t, "0", b[legis.ColRollCallCount])
	assert.Equal(t, "0", b[legis.ColTotalYea])
	assert.Equal(t, "0", b[legis.ColTotalNay])
}

func TestDataset_ColumnOrder(t *testing.T) {
	out, err := Dataset(scenarioDir(t))
	require.NoError(t, err)

	want := append([]string{legis.ColState, "bill_id", "bill_number", "title"}, legis.AggregateColumns...)
	assert.Equal(t, want, out.Header)
}

func TestDataset_CountsMatchChildRows(t *testing.T) {
	tables := testutil.MinimalTables()
	tables[legis.BillsTable] = "bill_id,title\nX1,a\nX2,b\nX3,c\n"
	tables[legis.SponsorsTable] = "bill_id,people_id,position\nX1,1,1\nX1,2,2\nX1,3,3\nX3,1,2\n"
	tables[legis.HistoryTable] = "bill_id,date,sequence,action\nX2,2022-01-01,1,a\nX2,2022-01-02,1,b\n"
	tables[legis.DocumentsTable] = "bill_id,document_type,url\nX3,Text,u1\nX3,Text,u1\nX3,,\n"
	tables[legis.RollCallsTable] = "bill_id,roll_call_id,yea,nay\nX1,1,5,\nX1,2,,7\nX2,3,1,1\n"
	dir := testutil.WriteDataset(t, testutil.DatasetDir(t.TempDir(), "OH", "2022"), tables)

	out, err := Dataset(dir)
	require.NoError(t, err)

	want := map[string][6]int{
		//     sponsors actions docs rollcalls yea nay
		"X1": {3, 0, 0, 2, 5, 7},
		"X2": {0, 2, 0, 1, 1, 1},
		"X3": {1, 0, 3, 0, 0, 0},
	}
	cols := []string{
		legis.ColSponsorCount, legis.ColActionCount, legis.ColDocumentCount,
		legis.ColRollCallCount, legis.ColTotalYea, legis.ColTotalNay,
	}
	for bill, counts := range want {
		rec := record(t, out, bill)
		for i, col := range cols {
			assert.Equal(t, strconv.Itoa(counts[i]), rec[col], "%s %s", bill, col)
		}
	}

	x3 := record(t, out, "X3")
	assert.Equal(t, "Text", x3[legis.ColDocumentTypes])
	assert.Equal(t, "u1 | u1", x3[legis.ColDocumentURLs], "duplicate urls kept, blanks dropped")
	assert.Equal(t, "", x3[legis.ColPrimarySponsor])
}

func TestDataset_UnmatchedPersonAndDuplicatePrimary(t *testing.T) {
	tables := testutil.MinimalTables()
	tables[legis.BillsTable] = "bill_id\n7\n"
	tables[legis.PeopleTable] = "people_id,name,party\n1,First,D\n2,Second,R\n"
	tables[legis.SponsorsTable] = "bill_id,people_id,position\n7,99,2\n7,1,1\n7,2,1\n"
	dir := testutil.WriteDataset(t, testutil.DatasetDir(t.TempDir(), "TX", "87th"), tables)

	out, err := Dataset(dir)
	require.NoError(t, err)

	rec := record(t, out, "7")
	assert.Equal(t, "First", rec[legis.ColPrimarySponsor], "first position-1 row in sort order wins")
	assert.Equal(t, "First | Second", rec[legis.ColSponsorNames], "unmatched person contributes no name")
	assert.Equal(t, "3", rec[legis.ColSponsorCount])
}

func TestDataset_HistorySequenceIsNumeric(t *testing.T) {
	tables := testutil.MinimalTables()
	tables[legis.BillsTable] = "bill_id\n1\n"
	tables[legis.HistoryTable] = "bill_id,date,sequence,action\n1,2021-05-01,10,Tenth\n1,2021-05-01,9,Ninth\n"
	dir := testutil.WriteDataset(t, testutil.DatasetDir(t.TempDir(), "NY", "2021"), tables)

	out, err := Dataset(dir)
	require.NoError(t, err)
	assert.Equal(t, "Tenth", record(t, out, "1")[legis.ColLastHistoryAction])
}

func TestDataset_MissingTable(t *testing.T) {
	tables := testutil.ScenarioTables()
	tables[legis.DocumentsTable] = ""
	dir := testutil.WriteDataset(t, testutil.DatasetDir(t.TempDir(), "AK", "s"), tables)

	_, err := Dataset(dir)
	require.Error(t, err)
	assert.True(t, legis.IsCode(err, legis.CodeTableParse))
}

func TestDataset_MissingColumn(t *testing.T) {
	tables := testutil.ScenarioTables()
	tables[legis.RollCallsTable] = "bill_id,roll_call_id,yea\n101,1,3\n"
	dir := testutil.WriteDataset(t, testutil.DatasetDir(t.TempDir(), "AK", "s"), tables)

	_, err := Dataset(dir)
	require.Error(t, err)
	assert.True(t, legis.IsCode(err, legis.CodeTableParse))
	assert.Contains(t, err.Error(), `"nay"`)
}

func TestDataset_NonNumericVotes(t *testing.T) {
	tables := testutil.ScenarioTables()
	tables[legis.RollCallsTable] = "bill_id,roll_call_id,yea,nay\n101,1,many,0\n"
	dir := testutil.WriteDataset(t, testutil.DatasetDir(t.TempDir(), "AK", "s"), tables)

	_, err := Dataset(dir)
	require.Error(t, err)
	assert.True(t, legis.IsCode(err, legis.CodeAggregation))
}

func TestDataset_BillsAlreadyHaveState(t *testing.T) {
	tables := testutil.ScenarioTables()
	tables[legis.BillsTable] = "bill_id,state\n101,AK\n"
	dir := testutil.WriteDataset(t, testutil.DatasetDir(t.TempDir(), "AK", "s"), tables)

	_, err := Dataset(dir)
	require.Error(t, err)
	assert.True(t, legis.IsCode(err, legis.CodeAggregation))
}

func TestProcess_WritesGoldenOutput(t *testing.T) {
	dir := scenarioDir(t)
	outDir := filepath.Join(t.TempDir(), "combined")

	res, err := Process(dir, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "AK_2021-2022_32nd.csv"), res.Output)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "AK", res.Location.State)

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "scenario", data)
}

func TestProcess_RerunIsByteIdentical(t *testing.T) {
	dir := scenarioDir(t)
	outDir := t.TempDir()

	first, err := Process(dir, outDir)
	require.NoError(t, err)
	before, err := os.ReadFile(first.Output)
	require.NoError(t, err)

	second, err := Process(dir, outDir)
	require.NoError(t, err)
	after, err := os.ReadFile(second.Output)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestProcess_UnwritableOutputIsAggregationFailure(t *testing.T) {
	dir := scenarioDir(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Process(dir, blocker)
	require.Error(t, err)
	assert.True(t, legis.IsCode(err, legis.CodeAggregation))
}

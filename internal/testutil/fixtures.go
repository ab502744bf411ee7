// Package testutil builds on-disk fixtures for pipeline tests: dataset
// directories in the bulk-archive layout and zip archives.
package testutil

import (
	"archive/zip"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/legicorpus/internal/legis"
)

// Tables holds raw CSV content keyed by table file name.
type Tables map[string]string

// MinimalTables returns header-only content for all six required tables.
func MinimalTables() Tables {
	return Tables{
		legis.BillsTable:     "bill_id,bill_number,title\n",
		legis.PeopleTable:    "people_id,name,party\n",
		legis.SponsorsTable:  "bill_id,people_id,position\n",
		legis.HistoryTable:   "bill_id,date,sequence,action\n",
		legis.DocumentsTable: "bill_id,document_type,url\n",
		legis.RollCallsTable: "bill_id,roll_call_id,yea,nay\n",
	}
}

// ScenarioTables is a small dataset: bill 101 has a primary sponsor and a
// co-sponsor, one document, history and two roll calls; bill 102 has only a
// co-sponsor and nothing else.
func ScenarioTables() Tables {
	return Tables{
		legis.BillsTable: "bill_id,bill_number,title\n" +
			"101,HB1,Education Funding\n" +
			"102,HB2,Road Repair\n",
		legis.PeopleTable: "people_id,name,party\n" +
			"1,Ann Lee,D\n" +
			"2,Bob Ray,R\n" +
			"3,Cy Diaz,\n",
		legis.SponsorsTable: "bill_id,people_id,position\n" +
			"101,2,2\n" +
			"101,1,1\n" +
			"102,3,2\n",
		legis.HistoryTable: "bill_id,date,sequence,action\n" +
			"101,2021-03-02,2,Passed House\n" +
			"101,2021-01-11,1,Introduced\n" +
			"101,2021-03-02,1,Third Reading\n",
		legis.DocumentsTable: "bill_id,document_type,url\n" +
			"101,Text,https://example.test/101/text\n",
		legis.RollCallsTable: "bill_id,roll_call_id,yea,nay\n" +
			"101,9001,30,10\n" +
			"101,9002,12,3\n",
	}
}

// WriteDataset writes tables into dir, creating it. Tables set to "" are
// omitted so tests can build incomplete datasets.
func WriteDataset(t *testing.T, dir string, tables Tables) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range tables {
		if content == "" {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// DatasetDir returns root/state/session/csv, the bulk-archive layout.
func DatasetDir(root, state, session string) string {
	return filepath.Join(root, state, session, "csv")
}

// ZipEntry is one archive member. Names ending in "/" are directories.
type ZipEntry struct {
	Name string
	Body string
}

// WriteZip creates a zip archive at path containing entries in order.
func WriteZip(t *testing.T, path string, entries []ZipEntry) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		require.NoError(t, err)
		if e.Body != "" {
			_, err = io.WriteString(w, e.Body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return path
}

// DatasetEntries lays tables out under prefix as zip entries.
func DatasetEntries(prefix string, tables Tables) []ZipEntry {
	entries := []ZipEntry{{Name: prefix + "/"}}
	for _, name := range legis.RequiredTables {
		if body, ok := tables[name]; ok {
			entries = append(entries, ZipEntry{Name: prefix + "/" + name, Body: body})
		}
	}
	return entries
}

// SetModTime sets both access and modification time of path.
func SetModTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// SilenceLogs routes the default slog logger to io.Discard for the test.
func SilenceLogs(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
}

package aggregate

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/roach88/legicorpus/internal/dataset"
	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/table"
)

// Result describes one processed dataset.
type Result struct {
	Dir      string
	Location dataset.Location
	Output   string
	Rows     int
}

// Dataset loads the six tables in dir and returns the bill-centric table:
// state, every bills column, then legis.AggregateColumns.
func Dataset(dir string) (*table.Table, error) {
	tables := make(map[string]*table.Table, len(legis.RequiredTables))
	for _, name := range legis.RequiredTables {
		t, err := table.Read(filepath.Join(dir, name), legis.RequiredColumns[name]...)
		if err != nil {
			return nil, err
		}
		tables[name] = t
	}

	bills := tables[legis.BillsTable]
	if bills.Index(legis.ColState) >= 0 {
		return nil, legis.NewError(legis.CodeAggregation, bills.Name,
			fmt.Sprintf("cannot insert %q, already exists", legis.ColState))
	}

	sponsors, err := table.Lookup(tables[legis.SponsorsTable], legis.ColPeopleID,
		tables[legis.PeopleTable], legis.ColPeopleID, legis.ColName, legis.ColParty)
	if err != nil {
		return nil, err
	}

	children := []struct {
		rows *table.Table
		spec table.GroupSpec
	}{
		{sponsors, sponsorSpec},
		{tables[legis.HistoryTable], historySpec},
		{tables[legis.DocumentsTable], documentSpec},
		{tables[legis.RollCallsTable], rollCallSpec},
	}

	result := bills.Prepend(legis.ColState, dataset.Locate(dir).State)
	for _, child := range children {
		grouped, err := table.GroupBy(child.rows, child.spec)
		if err != nil {
			return nil, err
		}
		result, err = table.LeftJoin(result, legis.ColBillID, grouped, missingValue)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Process aggregates the dataset in dir and writes it to
// outDir/<STATE>_<session>.csv. Errors that are not already classified are
// reported as legis.CodeAggregation.
func Process(dir, outDir string) (Result, error) {
	loc := dataset.Locate(dir)
	res := Result{
		Dir:      dir,
		Location: loc,
		Output:   filepath.Join(outDir, loc.OutputName()),
	}

	t, err := Dataset(dir)
	if err != nil {
		return res, classify(dir, err)
	}
	if err := table.Write(res.Output, t); err != nil {
		return res, classify(dir, err)
	}
	res.Rows = len(t.Rows)
	return res, nil
}

func classify(dir string, err error) error {
	var le *legis.Error
	if errors.As(err, &le) {
		return err
	}
	return legis.WrapError(legis.CodeAggregation, dir, "aggregating dataset", err)
}

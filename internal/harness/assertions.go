package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/legicorpus/internal/table"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	File     string // File or dataset the assertion targeted
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (%s)\n", e.Type, e.File)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// evaluate dispatches one assertion against result.
func evaluate(a Assertion, result *Result) error {
	switch a.Type {
	case AssertRowCount:
		return assertRowCount(a, result)
	case AssertColumns:
		return assertColumns(a, result)
	case AssertRow:
		return assertRow(a, result)
	case AssertNoFile:
		return assertNoFile(a, result)
	case AssertDatasetStatus:
		return assertDatasetStatus(a, result)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func fileOf(a Assertion, result *Result) (*table.Table, error) {
	t, ok := result.Files[a.File]
	if !ok {
		return nil, &AssertionError{
			Type:     a.Type,
			File:     a.File,
			Expected: "file written",
			Actual:   fmt.Sprintf("not found among %v", fileNames(result)),
		}
	}
	return t, nil
}

func fileNames(result *Result) []string {
	names := make([]string, 0, len(result.Files))
	for name := range result.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func assertRowCount(a Assertion, result *Result) error {
	t, err := fileOf(a, result)
	if err != nil {
		return err
	}
	if len(t.Rows) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			File:     a.File,
			Expected: fmt.Sprintf("%d rows", a.Count),
			Actual:   fmt.Sprintf("%d rows", len(t.Rows)),
		}
	}
	return nil
}

func assertColumns(a Assertion, result *Result) error {
	t, err := fileOf(a, result)
	if err != nil {
		return err
	}
	if !slices.Equal(t.Header, a.Columns) {
		return &AssertionError{
			Type:     a.Type,
			File:     a.File,
			Expected: strings.Join(a.Columns, ","),
			Actual:   strings.Join(t.Header, ","),
		}
	}
	return nil
}

// assertRow finds the first row matching every Where value and checks the
// Expect values on it (subset match).
func assertRow(a Assertion, result *Result) error {
	t, err := fileOf(a, result)
	if err != nil {
		return err
	}
	for col := range mergeKeys(a.Where, a.Expect) {
		if t.Index(col) < 0 {
			return &AssertionError{
				Type:     a.Type,
				File:     a.File,
				Expected: fmt.Sprintf("column %q", col),
				Actual:   "column missing",
			}
		}
	}

	for _, row := range t.Rows {
		if !rowMatches(t, row, a.Where) {
			continue
		}
		var diffs []string
		for _, col := range sortedKeys(a.Expect) {
			if got := row[t.Index(col)]; got != a.Expect[col] {
				diffs = append(diffs, fmt.Sprintf("%s=%q (want %q)", col, got, a.Expect[col]))
			}
		}
		if len(diffs) > 0 {
			return &AssertionError{
				Type:     a.Type,
				File:     a.File,
				Expected: fmt.Sprintf("%v where %v", a.Expect, a.Where),
				Actual:   strings.Join(diffs, ", "),
			}
		}
		return nil
	}

	return &AssertionError{
		Type:     a.Type,
		File:     a.File,
		Expected: fmt.Sprintf("a row where %v", a.Where),
		Actual:   "no matching row",
	}
}

func assertNoFile(a Assertion, result *Result) error {
	if _, ok := result.Files[a.File]; ok {
		return &AssertionError{
			Type:     a.Type,
			File:     a.File,
			Expected: "file not written",
			Actual:   "file exists",
		}
	}
	return nil
}

// assertDatasetStatus matches a ledger record by its output name, for
// example AK_2021-2022.
func assertDatasetStatus(a Assertion, result *Result) error {
	var seen []string
	for _, rec := range result.Ledger {
		name := rec.State + "_" + rec.Session
		seen = append(seen, name+"="+rec.Status)
		if name != a.Dataset {
			continue
		}
		if rec.Status != a.Status {
			return &AssertionError{
				Type:     a.Type,
				File:     a.Dataset,
				Expected: a.Status,
				Actual:   fmt.Sprintf("%s (%s)", rec.Status, rec.Error),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		File:     a.Dataset,
		Expected: "dataset recorded",
		Actual:   fmt.Sprintf("recorded: %v", seen),
	}
}

func rowMatches(t *table.Table, row []string, where map[string]string) bool {
	for col, want := range where {
		if row[t.Index(col)] != want {
			return false
		}
	}
	return true
}

func mergeKeys(maps ...map[string]string) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, m := range maps {
		for k := range m {
			keys[k] = struct{}{}
		}
	}
	return keys
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

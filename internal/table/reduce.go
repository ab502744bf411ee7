package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/legicorpus/internal/legis"
)

// Group is the rows of a child table sharing one key, in sort order.
type Group struct {
	Key  string
	Rows [][]string
	cols map[string]int
}

// Len returns the number of rows in the group.
func (g Group) Len() int {
	return len(g.Rows)
}

// Values returns col for every row of the group, in order.
func (g Group) Values(col string) []string {
	idx, ok := g.cols[col]
	if !ok {
		return nil
	}
	values := make([]string, len(g.Rows))
	for i, row := range g.Rows {
		values[i] = row[idx]
	}
	return values
}

// Field folds a group into one output cell.
type Field struct {
	Name string
	// Uses lists the child columns the field reads; GroupBy checks them.
	Uses   []string
	Reduce func(g Group) (string, error)
}

// GroupSpec describes a grouped reduction over a child table.
type GroupSpec struct {
	// Key is the grouping column. Rows with a blank key are dropped.
	Key string
	// SortBy orders rows within each group. The sort is stable, so ties keep
	// file order.
	SortBy []string
	Fields []Field
}

// Grouped holds one reduced row per key.
type Grouped struct {
	Columns []string
	// Keys lists group keys in first-seen order.
	Keys   []string
	values map[string][]string
}

// Get returns the reduced cells for key.
func (g *Grouped) Get(key string) ([]string, bool) {
	v, ok := g.values[key]
	return v, ok
}

// GroupBy groups t by spec.Key, sorts each group, and applies every field.
func GroupBy(t *Table, spec GroupSpec) (*Grouped, error) {
	needed := append([]string{spec.Key}, spec.SortBy...)
	for _, f := range spec.Fields {
		needed = append(needed, f.Uses...)
	}
	if err := t.Require(needed...); err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		cols[h] = i
	}

	keyIdx := cols[spec.Key]
	groups := make(map[string][][]string)
	var keys []string
	for _, row := range t.Rows {
		k := row[keyIdx]
		if k == "" {
			continue
		}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], row)
	}

	sortIdx := make([]int, len(spec.SortBy))
	kinds := make([]Kind, len(spec.SortBy))
	for i, c := range spec.SortBy {
		sortIdx[i] = cols[c]
		kinds[i] = ColumnKind(t.Column(c))
	}

	out := &Grouped{
		Keys:   keys,
		values: make(map[string][]string, len(keys)),
	}
	for _, f := range spec.Fields {
		out.Columns = append(out.Columns, f.Name)
	}

	for _, k := range keys {
		rows := groups[k]
		if len(sortIdx) > 0 {
			sort.SliceStable(rows, func(a, b int) bool {
				for i, idx := range sortIdx {
					if c := Compare(kinds[i], rows[a][idx], rows[b][idx]); c != 0 {
						return c < 0
					}
				}
				return false
			})
		}

		g := Group{Key: k, Rows: rows, cols: cols}
		cells := make([]string, len(spec.Fields))
		for i, f := range spec.Fields {
			v, err := f.Reduce(g)
			if err != nil {
				return nil, legis.WrapError(legis.CodeAggregation, t.Name,
					fmt.Sprintf("%s for %s=%s", f.Name, spec.Key, k), err)
			}
			cells[i] = v
		}
		out.values[k] = cells
	}
	return out, nil
}

// LeftJoin returns parent with g's columns appended, matched on key.
// Parent rows without a group get missing(col) for every appended column.
// Appending a column the parent already has is an aggregation failure.
func LeftJoin(parent *Table, key string, g *Grouped, missing func(col string) string) (*Table, error) {
	if err := parent.Require(key); err != nil {
		return nil, err
	}
	for _, c := range g.Columns {
		if parent.Index(c) >= 0 {
			return nil, legis.NewError(legis.CodeAggregation, parent.Name,
				fmt.Sprintf("cannot add column %q, already exists", c))
		}
	}

	defaults := make([]string, len(g.Columns))
	for i, c := range g.Columns {
		defaults[i] = missing(c)
	}

	keyIdx := parent.Index(key)
	out := &Table{
		Name:   parent.Name,
		Header: append(append([]string{}, parent.Header...), g.Columns...),
		Rows:   make([][]string, len(parent.Rows)),
	}
	for i, row := range parent.Rows {
		cells, ok := g.Get(row[keyIdx])
		if !ok || row[keyIdx] == "" {
			cells = defaults
		}
		joined := make([]string, 0, len(row)+len(cells))
		joined = append(joined, row...)
		out.Rows[i] = append(joined, cells...)
	}
	return out, nil
}

// Lookup returns child with cols copied in from the first ref row whose
// refKey equals the child's key. Unmatched rows get blank cells.
func Lookup(child *Table, key string, ref *Table, refKey string, cols ...string) (*Table, error) {
	if err := child.Require(key); err != nil {
		return nil, err
	}
	if err := ref.Require(append([]string{refKey}, cols...)...); err != nil {
		return nil, err
	}

	refIdx := ref.Index(refKey)
	colIdx := make([]int, len(cols))
	for i, c := range cols {
		colIdx[i] = ref.Index(c)
	}
	index := make(map[string][]string, len(ref.Rows))
	for _, row := range ref.Rows {
		k := row[refIdx]
		if _, ok := index[k]; ok || k == "" {
			continue
		}
		cells := make([]string, len(cols))
		for i, idx := range colIdx {
			cells[i] = row[idx]
		}
		index[k] = cells
	}

	// Name clashes with the child are resolved by replacing the child column.
	header := make([]string, 0, len(child.Header)+len(cols))
	keep := make([]int, 0, len(child.Header))
	for i, h := range child.Header {
		if contains(cols, h) {
			continue
		}
		header = append(header, h)
		keep = append(keep, i)
	}
	header = append(header, cols...)

	keyIdx := child.Index(key)
	blank := make([]string, len(cols))
	out := &Table{Name: child.Name, Header: header, Rows: make([][]string, len(child.Rows))}
	for i, row := range child.Rows {
		joined := make([]string, 0, len(header))
		for _, idx := range keep {
			joined = append(joined, row[idx])
		}
		cells, ok := index[row[keyIdx]]
		if !ok {
			cells = blank
		}
		out.Rows[i] = append(joined, cells...)
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Count is the number of rows in the group.
func Count(name string) Field {
	return Field{
		Name: name,
		Reduce: func(g Group) (string, error) {
			return strconv.Itoa(g.Len()), nil
		},
	}
}

// Join concatenates the non-blank values of col with legis.Delimiter.
func Join(name, col string) Field {
	return Field{
		Name: name,
		Uses: []string{col},
		Reduce: func(g Group) (string, error) {
			return strings.Join(nonBlank(g.Values(col)), legis.Delimiter), nil
		},
	}
}

// JoinDistinct is Join keeping only the first occurrence of each value.
func JoinDistinct(name, col string) Field {
	return Field{
		Name: name,
		Uses: []string{col},
		Reduce: func(g Group) (string, error) {
			seen := make(map[string]bool)
			var out []string
			for _, v := range nonBlank(g.Values(col)) {
				if seen[v] {
					continue
				}
				seen[v] = true
				out = append(out, v)
			}
			return strings.Join(out, legis.Delimiter), nil
		},
	}
}

// FirstWhere is col of the first row whose match column satisfies pred,
// or "" when no row does.
func FirstWhere(name, col, match string, pred func(string) bool) Field {
	return Field{
		Name: name,
		Uses: []string{col, match},
		Reduce: func(g Group) (string, error) {
			values := g.Values(col)
			for i, m := range g.Values(match) {
				if pred(m) {
					return values[i], nil
				}
			}
			return "", nil
		},
	}
}

// Last is col of the final row in sort order.
func Last(name, col string) Field {
	return Field{
		Name: name,
		Uses: []string{col},
		Reduce: func(g Group) (string, error) {
			values := g.Values(col)
			if len(values) == 0 {
				return "", nil
			}
			return values[len(values)-1], nil
		},
	}
}

// Sum adds the integer values of col. Blanks count as 0.
func Sum(name, col string) Field {
	return Field{
		Name: name,
		Uses: []string{col},
		Reduce: func(g Group) (string, error) {
			var total int64
			for _, v := range g.Values(col) {
				n, err := ParseCount(v)
				if err != nil {
					return "", fmt.Errorf("non-numeric %s value %q", col, v)
				}
				total += n
			}
			return strconv.FormatInt(total, 10), nil
		},
	}
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

package corpus

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/legicorpus/internal/table"
)

// CombineResult summarizes a Combine run. Removed is always Before - After.
type CombineResult struct {
	Output  string `json:"output"`
	Files   int    `json:"files"`
	Skipped int    `json:"skipped"`
	Before  int    `json:"before"`
	After   int    `json:"after"`
	Removed int    `json:"removed"`
}

// Combine loads every *.csv in inDir, concatenates them aligned by column
// name, drops rows equal to an earlier row across every column, and writes
// the result to output. Unreadable files are logged and skipped. When no
// file can be read nothing is written.
func Combine(inDir, output string) (CombineResult, error) {
	res := CombineResult{Output: output}

	paths, err := filepath.Glob(filepath.Join(inDir, "*.csv"))
	if err != nil {
		return res, fmt.Errorf("list %s: %w", inDir, err)
	}
	sort.Strings(paths)

	outAbs, _ := filepath.Abs(output)
	var tables []*table.Table
	for _, path := range paths {
		if abs, _ := filepath.Abs(path); abs == outAbs {
			continue
		}
		t, err := table.Read(path)
		if err != nil {
			slog.Error("error reading dataset output", "path", path, "error", err)
			res.Skipped++
			continue
		}
		slog.Debug("dataset output loaded", "path", path, "rows", len(t.Rows))
		tables = append(tables, t)
	}
	res.Files = len(tables)

	if len(tables) == 0 {
		slog.Info("no dataset outputs to combine", "dir", inDir)
		return res, nil
	}

	combined := Concat(tables)
	res.Before = len(combined.Rows)
	combined.Rows = Dedupe(combined.Rows)
	res.After = len(combined.Rows)
	res.Removed = res.Before - res.After

	if err := table.Write(output, combined); err != nil {
		return res, err
	}
	slog.Info("corpus written", "path", output, "before", res.Before, "after", res.After, "removed", res.Removed)
	return res, nil
}

// Concat stacks tables into one. The header is the union of all columns in
// first-seen order; cells a table lacks are blank.
func Concat(tables []*table.Table) *table.Table {
	out := &table.Table{Name: "corpus"}
	index := make(map[string]int)
	for _, t := range tables {
		for _, h := range t.Header {
			if _, ok := index[h]; !ok {
				index[h] = len(out.Header)
				out.Header = append(out.Header, h)
			}
		}
	}

	for _, t := range tables {
		pos := make([]int, len(t.Header))
		for i, h := range t.Header {
			pos[i] = index[h]
		}
		for _, row := range t.Rows {
			aligned := make([]string, len(out.Header))
			for i, cell := range row {
				aligned[pos[i]] = cell
			}
			out.Rows = append(out.Rows, aligned)
		}
	}
	return out
}

// Dedupe keeps the first occurrence of every distinct row, preserving order.
func Dedupe(rows [][]string) [][]string {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		k := rowKey(row)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}

// rowKey length-prefixes each cell so no two distinct rows share a key.
func rowKey(row []string) string {
	var b strings.Builder
	for _, cell := range row {
		b.WriteString(strconv.Itoa(len(cell)))
		b.WriteByte(':')
		b.WriteString(cell)
	}
	return b.String()
}

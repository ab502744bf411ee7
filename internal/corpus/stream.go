package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/legicorpus/internal/archive"
	"github.com/roach88/legicorpus/internal/dataset"
	"github.com/roach88/legicorpus/internal/legis"
)

// RawOutputName is the file written by StreamConcat.
const RawOutputName = "all-bills.csv"

// StreamOptions selects the raw table files to concatenate.
type StreamOptions struct {
	// TableDir is the name of the directory holding the tables, compared
	// case-insensitively. Defaults to "csv".
	TableDir string
	// TableName is the raw table file name. Defaults to legis.BillsTable.
	TableName string
}

func (o StreamOptions) withDefaults() StreamOptions {
	if o.TableDir == "" {
		o.TableDir = "csv"
	}
	if o.TableName == "" {
		o.TableName = legis.BillsTable
	}
	return o
}

// StreamResult summarizes a StreamConcat run.
type StreamResult struct {
	Output  string `json:"output"`
	Files   int    `json:"files"`
	Skipped int    `json:"skipped"`
	Rows    int    `json:"rows"`
}

// RawOutputPath is <parent>/concatenated-<name>/all-bills.csv for an archive
// or directory input.
func RawOutputPath(input string) string {
	parent := filepath.Dir(filepath.Clean(input))
	return filepath.Join(parent, "concatenated-"+archive.DerivedName(input), RawOutputName)
}

// FindRawTables returns every opts.TableName under root whose parent
// directory is opts.TableDir, in sorted path order.
func FindRawTables(root string, opts StreamOptions) ([]string, error) {
	opts = opts.withDefaults()

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	root = resolved

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != opts.TableName {
			return nil
		}
		if strings.EqualFold(filepath.Base(filepath.Dir(path)), opts.TableDir) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// StreamConcat writes the header of the first raw table plus a state column,
// then every data row of every raw table under root with that table's state
// code appended. The output is created only once a table yields a header, so
// when no table is readable nothing is written and Files is 0. A table that
// fails mid-way is logged and skipped.
func StreamConcat(root, output string, opts StreamOptions) (res StreamResult, err error) {
	res.Output = output

	paths, err := FindRawTables(root, opts)
	if err != nil {
		return res, err
	}
	if len(paths) == 0 {
		slog.Info("no raw tables found", "root", root, "table", opts.withDefaults().TableName)
		return res, nil
	}

	out := &rawOutput{path: output}
	defer func() {
		if closeErr := out.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, path := range paths {
		state := dataset.Locate(filepath.Dir(path)).State
		rows, err := streamFile(out, path, state)
		res.Rows += rows
		if err != nil {
			slog.Error("error processing raw table", "path", path, "error", err)
			res.Skipped++
			continue
		}
		res.Files++
		slog.Debug("raw table streamed", "path", path, "state", state, "rows", rows)
	}
	if out.w == nil {
		slog.Info("no readable raw tables", "root", root, "skipped", res.Skipped)
	}
	return res, nil
}

// rawOutput is the concatenated file, opened on the first header.
type rawOutput struct {
	path string
	f    *os.File
	w    *csv.Writer
}

func (o *rawOutput) open(header []string) error {
	if err := os.MkdirAll(filepath.Dir(o.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	o.f = f
	o.w = csv.NewWriter(f)
	if err := o.w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func (o *rawOutput) close() error {
	if o.f == nil {
		return nil
	}
	o.w.Flush()
	writeErr := o.w.Error()
	if err := o.f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if writeErr != nil {
		return fmt.Errorf("write output: %w", writeErr)
	}
	return nil
}

// streamFile copies one table into out, returning the data rows written.
func streamFile(out *rawOutput, path, state string) (int, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return 0, errors.New("empty file, no header")
	}
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if out.w == nil {
		if err := out.open(append(header, legis.ColState)); err != nil {
			return 0, err
		}
	}
	w := out.w

	rows := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.Flush()
			return rows, fmt.Errorf("read row: %w", err)
		}
		if err := w.Write(append(record, state)); err != nil {
			return rows, fmt.Errorf("write row: %w", err)
		}
		rows++
	}
	w.Flush()
	return rows, w.Error()
}

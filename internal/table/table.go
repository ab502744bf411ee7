package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/roach88/legicorpus/internal/legis"
)

// utf8BOM is stripped from the first header cell when present.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is an in-memory CSV table. Rows always have len(Header) cells.
type Table struct {
	// Name identifies the table in errors (usually the file path).
	Name   string
	Header []string
	Rows   [][]string
}

// Index returns the position of col in the header, or -1.
func (t *Table) Index(col string) int {
	for i, h := range t.Header {
		if h == col {
			return i
		}
	}
	return -1
}

// Require returns a TableParse error naming the first missing column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if t.Index(c) < 0 {
			return legis.NewError(legis.CodeTableParse, t.Name, fmt.Sprintf("missing required column %q", c))
		}
	}
	return nil
}

// Column returns the values of col in row order. Returns nil if col is absent.
func (t *Table) Column(col string) []string {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// Prepend returns a copy of t with a constant column inserted first.
func (t *Table) Prepend(col, value string) *Table {
	out := &Table{
		Name:   t.Name,
		Header: append([]string{col}, t.Header...),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string{value}, row...)
	}
	return out
}

// Read loads a CSV file with a header row and checks the required columns.
// Short rows are padded with blanks; rows longer than the header are a
// parse error. Every failure is a legis.CodeTableParse error.
func Read(path string, required ...string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, legis.WrapError(legis.CodeTableParse, path, "opening table", err)
	}
	defer f.Close()

	t, err := Decode(f, path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(required...); err != nil {
		return nil, err
	}
	return t, nil
}

// Decode parses CSV from r. name is used for error reporting.
func Decode(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, legis.NewError(legis.CodeTableParse, name, "no columns to parse from file")
	}
	if err != nil {
		return nil, legis.WrapError(legis.CodeTableParse, name, "reading header", err)
	}
	if len(header) > 0 {
		header[0] = string(bytes.TrimPrefix([]byte(header[0]), utf8BOM))
	}

	t := &Table{Name: name, Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, legis.WrapError(legis.CodeTableParse, name, "reading row", err)
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, legis.NewError(legis.CodeTableParse, name,
				fmt.Sprintf("line %d: expected %d fields, saw %d", line, len(header), len(record)))
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// Write stores t as CSV at path, creating parent directories.
func Write(path string, t *Table) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
	}()
	return Encode(f, t)
}

// Encode writes the header and every row of t to w as CSV.
func Encode(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// Package tabular loads and saves the CSV/Excel tables the exporter
// processes. A Table keeps its column order so the annotated output file
// looks like the input file plus the derived columns.
package tabular

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Row is one table row keyed by header name. Every header present in the
// table has an entry; missing cells are empty strings.
type Row struct {
	Line int // 1-indexed source line, header is line 1
	Data map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// Set writes a cell value
func (r *Row) Set(header, value string) {
	r.Data[header] = value
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the row
func (r *Row) Clone() *Row {
	data := make(map[string]string, len(r.Data))
	for k, v := range r.Data {
		data[k] = v
	}
	return &Row{Line: r.Line, Data: data}
}

// Table is an in-memory tabular file with ordered headers.
type Table struct {
	Headers []string
	Rows    []*Row
}

// HasColumn checks if a header exists
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// EnsureColumns appends any missing headers and backfills empty cells so
// every row has an entry for them.
func (t *Table) EnsureColumns(names ...string) {
	for _, name := range names {
		if t.HasColumn(name) {
			continue
		}
		t.Headers = append(t.Headers, name)
		for _, row := range t.Rows {
			if _, ok := row.Data[name]; !ok {
				row.Data[name] = ""
			}
		}
	}
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Load reads a table from disk, dispatching on the file extension.
// Unsupported extensions are a hard failure.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx", ".xls":
		return loadExcel(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Save writes a table to disk in the format implied by the extension.
func Save(t *Table, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return saveCSV(t, path)
	case ".xlsx", ".xls":
		return saveExcel(t, path)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

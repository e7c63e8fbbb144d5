package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// loadCSV reads a CSV file into a Table. Handles a UTF-8 BOM, validates the
// encoding, trims cell whitespace, and tolerates rows with fewer fields than
// the header.
func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	bufReader := bufio.NewReader(f)

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	peeked, err := bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(peeked) >= 3 && peeked[0] == 0xEF && peeked[1] == 0xBB && peeked[2] == 0xBF {
		_, _ = bufReader.Discard(3)
	}

	if err := validateUTF8(bufReader); err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Headers: make([]string, len(header))}
	for i, h := range header {
		table.Headers[i] = strings.TrimSpace(h)
	}
	if len(table.Headers) == 0 {
		return nil, ErrMissingHeader
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", line, err)
		}

		row := &Row{Line: line, Data: make(map[string]string, len(table.Headers))}
		for i, h := range table.Headers {
			if i < len(record) {
				row.Data[h] = strings.TrimSpace(record[i])
			} else {
				row.Data[h] = ""
			}
		}

		// Skip completely empty rows
		if row.IsEmpty() {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// validateUTF8 checks that the content is valid UTF-8
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}

	if len(content) == 0 {
		return ErrEmptyFile
	}

	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}

	return nil
}

// saveCSV writes the table back out with headers in their original order.
func saveCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(t.Headers))
	for _, row := range t.Rows {
		for i, h := range t.Headers {
			record[i] = row.Data[h]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Line, err)
		}
	}

	w.Flush()
	return w.Error()
}

// Package tabular implements the flat-file table storage used by every
// stateful component: whole-table loads, whole-table writes and keyed
// appends over CSV files. There is no locking and no cross-file atomicity;
// the application assumes a single active process.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrAbsent indicates the table file does not exist.
	ErrAbsent = errors.New("tabular: table absent")
	// ErrDuplicateKey indicates an append collided on the key column.
	ErrDuplicateKey = errors.New("tabular: duplicate key")
)

// Row holds one record keyed by column name. Missing columns read as "".
type Row map[string]string

// Get returns the trimmed value of a column.
func (r Row) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// Float parses a numeric column. Comma decimal separators from
// spreadsheet exports are accepted.
func (r Row) Float(col string) (float64, bool) {
	raw := strings.ReplaceAll(strings.ReplaceAll(r.Get(col), " ", ""), ",", ".")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int parses an integer column, tolerating float formatting ("7.0").
func (r Row) Int(col string) (int, bool) {
	v, ok := r.Float(col)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// Table is a fully loaded CSV table. Row order follows the file.
type Table struct {
	Header []string
	Rows   []Row
}

// HasColumn reports whether the table header contains the column.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Load reads an entire table into memory. Returns ErrAbsent when the file
// does not exist so callers can degrade to an empty result.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAbsent, path)
		}
		return nil, fmt.Errorf("tabular: open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tabular: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	header := records[0]
	table := &Table{Header: header, Rows: make([]Row, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Save writes the table back in full, creating parent directories as needed.
func (t *Table) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("tabular: mkdir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tabular: create %s: %w", path, err)
	}
	writer := csv.NewWriter(f)
	if err := writer.Write(t.Header); err != nil {
		_ = f.Close()
		return fmt.Errorf("tabular: write header %s: %w", path, err)
	}
	for _, row := range t.Rows {
		record := make([]string, len(t.Header))
		for i, col := range t.Header {
			record[i] = row[col]
		}
		if err := writer.Write(record); err != nil {
			_ = f.Close()
			return fmt.Errorf("tabular: write row %s: %w", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("tabular: flush %s: %w", path, err)
	}
	return f.Close()
}

// Append adds one row, rejecting duplicates on keyCol. A missing file is
// created with the provided header; an existing file keeps its own header.
func Append(path string, header []string, row Row, keyCol string) error {
	table, err := Load(path)
	if errors.Is(err, ErrAbsent) {
		table = &Table{Header: header}
	} else if err != nil {
		return err
	}
	if len(table.Header) == 0 {
		table.Header = header
	}
	if keyCol != "" && table.HasColumn(keyCol) {
		key := row.Get(keyCol)
		for _, existing := range table.Rows {
			if existing.Get(keyCol) == key {
				return fmt.Errorf("%w: %s=%s", ErrDuplicateKey, keyCol, key)
			}
		}
	}
	table.Rows = append(table.Rows, row)
	return table.Save(path)
}

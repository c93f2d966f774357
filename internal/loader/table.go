// Package loader reads the facility and population CSV files into typed
// records. Both files are government exports with quirks: UTF-8 BOMs,
// quoted thousands separators, and header name drift across vintages, so the
// reader normalizes headers and reports errors with file and row context.
package loader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
)

// table is an in-memory CSV with a case-insensitive header index.
type table struct {
	path   string
	colIdx map[string]int // lowercase header -> column index
	rows   [][]string
}

// readTable loads a CSV file and verifies the required columns are present.
// Header matching is case-insensitive and whitespace-trimmed.
func readTable(path string, required ...string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &domain.LoadError{File: path, Msg: "cannot open file", Err: err}
	}
	defer file.Close()

	bufReader := bufio.NewReaderSize(file, 256*1024)

	// Skip UTF-8 BOM if present.
	if bom, err := bufReader.Peek(3); err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3) //nolint:errcheck // peek succeeded
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, &domain.LoadError{File: path, Row: 1, Msg: "cannot read header row", Err: err}
	}

	t := &table{path: path, colIdx: make(map[string]int, len(header))}
	for i, h := range header {
		t.colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := t.colIdx[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.LoadError{
			File: path,
			Row:  1,
			Msg:  fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}

	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, &domain.LoadError{File: path, Row: rowNum, Msg: "malformed CSV row", Err: err}
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// get returns the named column's value for a row, or "" when the row is
// shorter than the header (trailing empty fields are routinely truncated).
func (t *table) get(row []string, col string) string {
	idx, ok := t.colIdx[strings.ToLower(col)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// rowError builds a LoadError for a data row. dataIdx is the 0-based index
// into t.rows; the reported row number is 1-based including the header.
func (t *table) rowError(dataIdx int, format string, args ...any) error {
	return &domain.LoadError{File: t.path, Row: dataIdx + 2, Msg: fmt.Sprintf(format, args...)}
}

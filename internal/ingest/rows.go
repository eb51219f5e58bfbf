// Package ingest turns uploaded spreadsheets into listing rows.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"careerboard/internal/listing"
	"careerboard/internal/store"

	"github.com/xuri/excelize/v2"
)

// MaxRows bounds a single upload.
const MaxRows = 5000

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoHeader          = errors.New("file has no header row")
	ErrTooManyRows       = errors.New("too many rows")
)

// Parse reads a .csv or .xlsx file whose first row names the fields. Blank rows are skipped;
// Line numbers count data rows from 1 and include skipped rows.
func Parse(filename string, r io.Reader) ([]listing.BulkRow, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	return toRows(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rows, nil
}

func toRows(records [][]string) ([]listing.BulkRow, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	header := make([]string, len(records[0]))
	named := 0
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if header[i] != "" {
			named++
		}
	}
	if named == 0 {
		return nil, ErrNoHeader
	}
	if len(records)-1 > MaxRows {
		return nil, fmt.Errorf("%w: at most %d rows per upload", ErrTooManyRows, MaxRows)
	}

	out := make([]listing.BulkRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		fields := make(store.Item, len(header))
		for j, cell := range rec {
			if j >= len(header) || header[j] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				fields[header[j]] = cell
			}
		}
		if len(fields) == 0 {
			continue
		}
		out = append(out, listing.BulkRow{Line: i + 1, Fields: fields})
	}
	return out, nil
}

// Package sheet loads the site spreadsheet into memory.
//
// Workbooks (.xlsx, .xlsm, .xltx, .xltm) are read with excelize; CSV files are
// read with encoding/csv behind a BOM-aware UTF-8 decoder, so exports from
// Excel ("CSV UTF-8" or "Unicode Text") load without manual cleanup.
//
// The whole sheet is held in memory: the pipeline makes a single pass and the
// files involved are a few thousand rows at most.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/sitereg/internal/core"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table is a loaded sheet: the header row and every non-blank data row in
// file order. Rows may be shorter than the header; trailing empty cells are
// not stored.
type Table struct {
	Source string // path the table was loaded from
	Sheet  string // worksheet name; empty for CSV input
	Header []string
	Rows   [][]string
}

// Load reads the spreadsheet at path. sheetName selects a worksheet in a
// workbook; empty selects the first one. It is ignored for CSV input.
func Load(path, sheetName string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return loadWorkbook(path, sheetName)
	case ".csv":
		return loadCSVFile(path)
	default:
		return nil, fmt.Errorf("load %q: %w (want .xlsx, .xlsm, .xltx, .xltm or .csv)", path, core.ErrUnsupportedFormat)
	}
}

func loadWorkbook(path, sheetName string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %q: %v", core.ErrUnreadableInput, path, err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheetName)
	if err != nil {
		return nil, fmt.Errorf("workbook %q: %w", path, err)
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", core.ErrUnreadableInput, name, err)
	}

	t, err := newTable(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	t.Source = path
	t.Sheet = name
	return t, nil
}

// resolveSheet returns the worksheet to read: the requested one if it exists,
// otherwise the first sheet when no name was requested.
func resolveSheet(f *excelize.File, requested string) (string, error) {
	if requested == "" {
		name := f.GetSheetName(0)
		if name == "" {
			return "", fmt.Errorf("%w: workbook has no sheets", core.ErrSheetNotFound)
		}
		return name, nil
	}

	idx, err := f.GetSheetIndex(requested)
	if err != nil || idx == -1 {
		return "", fmt.Errorf("%w: %q (available: %s)", core.ErrSheetNotFound, requested, strings.Join(f.GetSheetList(), ", "))
	}
	return requested, nil
}

func loadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv %q: %w", path, err)
	}
	t.Source = path
	return t, nil
}

// ReadCSV reads a comma-separated sheet from r. A UTF-8 or UTF-16 BOM selects
// the encoding; without one the input is decoded as UTF-8 and invalid bytes
// are replaced with U+FFFD.
func ReadCSV(r io.Reader) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", core.ErrUnreadableInput, err)
	}
	return newTable(records)
}

// newTable takes the first non-blank record as the header and keeps every
// later non-blank record as a data row.
func newTable(records [][]string) (*Table, error) {
	t := &Table{}
	for _, rec := range records {
		if isBlankRow(rec) {
			continue
		}
		if t.Header == nil {
			t.Header = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}

	if t.Header == nil {
		return nil, core.ErrNoHeader
	}
	return t, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

package sheet

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/sitereg/internal/core"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

var testHeader = []interface{}{"Customer Site ID", "Customer Site Name", "Delivery Region", "SOW TNP", "Activity Flow Name"}

// writeWorkbook saves a workbook whose sheets hold the given rows and returns
// its path. The first entry of sheets names the default sheet.
func writeWorkbook(t *testing.T, sheets []string, rows map[string][][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet(%q): %v", name, err)
		}

		for r, row := range rows[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			row := row
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "sites.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// ----------------------------------------------------------------------------
// Workbook Tests
// ----------------------------------------------------------------------------

func TestLoad_WorkbookFirstSheet(t *testing.T) {
	path := writeWorkbook(t, []string{"Data"}, map[string][][]interface{}{
		"Data": {
			testHeader,
			{"A-NE,A-FE", "Alpha NE,Alpha FE", "Central Java", "Software Upgrade", "Swap"},
			{},
			{"B-NE,B-FE", "Bravo NE,Bravo FE", "East Java", "Hardware", "Swap"},
		},
	})

	tbl, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if tbl.Sheet != "Data" {
		t.Errorf("Sheet = %q, want Data", tbl.Sheet)
	}
	if tbl.Source != path {
		t.Errorf("Source = %q, want %q", tbl.Source, path)
	}
	if len(tbl.Header) != len(testHeader) || tbl.Header[0] != "Customer Site ID" {
		t.Errorf("Header = %v", tbl.Header)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2 (blank row dropped)", len(tbl.Rows))
	}
	if tbl.Rows[1][0] != "B-NE,B-FE" {
		t.Errorf("Rows[1][0] = %q, want B-NE,B-FE", tbl.Rows[1][0])
	}
}

func TestLoad_WorkbookNamedSheet(t *testing.T) {
	path := writeWorkbook(t, []string{"Summary", "Batch 2"}, map[string][][]interface{}{
		"Summary": {{"nothing here"}},
		"Batch 2": {
			testHeader,
			{"C-NE,C-FE", "Charlie NE,Charlie FE", "Bali", "Relocation", "Move"},
		},
	})

	tbl, err := Load(path, "Batch 2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tbl.Sheet != "Batch 2" {
		t.Errorf("Sheet = %q, want Batch 2", tbl.Sheet)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][2] != "Bali" {
		t.Errorf("Rows = %v", tbl.Rows)
	}
}

func TestLoad_WorkbookSheetNotFound(t *testing.T) {
	path := writeWorkbook(t, []string{"Data"}, map[string][][]interface{}{
		"Data": {testHeader},
	})

	_, err := Load(path, "Batch 9")
	if !errors.Is(err, core.ErrSheetNotFound) {
		t.Fatalf("Load() error = %v, want ErrSheetNotFound", err)
	}
	if !strings.Contains(err.Error(), "Data") {
		t.Errorf("error %q should list available sheets", err)
	}
}

func TestLoad_WorkbookEmptySheet(t *testing.T) {
	path := writeWorkbook(t, []string{"Data"}, nil)

	if _, err := Load(path, ""); !errors.Is(err, core.ErrNoHeader) {
		t.Errorf("Load() error = %v, want ErrNoHeader", err)
	}
}

func TestLoad_CorruptWorkbook(t *testing.T) {
	path := writeFile(t, "broken.xlsx", []byte("this is not a zip archive"))

	if _, err := Load(path, ""); !errors.Is(err, core.ErrUnreadableInput) {
		t.Errorf("Load() error = %v, want ErrUnreadableInput", err)
	}
}

// ----------------------------------------------------------------------------
// Dispatch Tests
// ----------------------------------------------------------------------------

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"sites.ods", "sites.txt", "sites"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, []byte("x"))
			if _, err := Load(path, ""); !errors.Is(err, core.ErrUnsupportedFormat) {
				t.Errorf("Load(%q) error = %v, want ErrUnsupportedFormat", name, err)
			}
		})
	}
}

func TestLoad_CSVExtensionCaseInsensitive(t *testing.T) {
	path := writeFile(t, "SITES.CSV", []byte("Customer Site ID\nA\n"))

	tbl, err := Load(path, "ignored")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tbl.Sheet != "" {
		t.Errorf("Sheet = %q, want empty for CSV", tbl.Sheet)
	}
	if len(tbl.Rows) != 1 {
		t.Errorf("len(Rows) = %d, want 1", len(tbl.Rows))
	}
}

// ----------------------------------------------------------------------------
// CSV Tests
// ----------------------------------------------------------------------------

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader []string
		wantRows   [][]string
	}{
		{
			name:       "plain",
			input:      "ID,Name\nA,Alpha\n",
			wantHeader: []string{"ID", "Name"},
			wantRows:   [][]string{{"A", "Alpha"}},
		},
		{
			name:       "utf-8 bom stripped",
			input:      "\ufeffID,Name\nA,Alpha\n",
			wantHeader: []string{"ID", "Name"},
			wantRows:   [][]string{{"A", "Alpha"}},
		},
		{
			name:       "quoted comma kept in one cell",
			input:      "ID,Name\n\"A-NE,A-FE\",\"Alpha NE,Alpha FE\"\n",
			wantHeader: []string{"ID", "Name"},
			wantRows:   [][]string{{"A-NE,A-FE", "Alpha NE,Alpha FE"}},
		},
		{
			name:       "ragged rows tolerated",
			input:      "ID,Name,Region\nA\nB,Bravo,Bali,extra\n",
			wantHeader: []string{"ID", "Name", "Region"},
			wantRows:   [][]string{{"A"}, {"B", "Bravo", "Bali", "extra"}},
		},
		{
			name:       "blank lines and empty rows dropped",
			input:      "\n,,\nID,Name\n\nA,Alpha\n , \nB,Bravo\n",
			wantHeader: []string{"ID", "Name"},
			wantRows:   [][]string{{"A", "Alpha"}, {"B", "Bravo"}},
		},
		{
			name:       "stray quote tolerated",
			input:      "ID,Name\nA,Alpha \"North\"\n",
			wantHeader: []string{"ID", "Name"},
			wantRows:   [][]string{{"A", "Alpha \"North\""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadCSV(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadCSV() error = %v", err)
			}
			if !reflect.DeepEqual(tbl.Header, tt.wantHeader) {
				t.Errorf("Header = %q, want %q", tbl.Header, tt.wantHeader)
			}
			if !reflect.DeepEqual(tbl.Rows, tt.wantRows) {
				t.Errorf("Rows = %q, want %q", tbl.Rows, tt.wantRows)
			}
		})
	}
}

func TestReadCSV_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.String("ID,Name\nA,Caf\u00e9\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tbl, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][1] != "Caf\u00e9" {
		t.Errorf("Rows = %q, want [[A Caf\u00e9]]", tbl.Rows)
	}
}

func TestReadCSV_InvalidUTF8Replaced(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("ID\nA\xffB\n"))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if got := tbl.Rows[0][0]; got != "A\ufffdB" {
		t.Errorf("cell = %q, want replacement character", got)
	}
}

func TestReadCSV_NoHeader(t *testing.T) {
	for _, input := range []string{"", "\n\n", ",,\n , \n"} {
		if _, err := ReadCSV(strings.NewReader(input)); !errors.Is(err, core.ErrNoHeader) {
			t.Errorf("ReadCSV(%q) error = %v, want ErrNoHeader", input, err)
		}
	}
}

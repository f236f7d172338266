package core

// convert.go turns cleaned cell text and derived values into the pgtype values
// used for the sites table, and provides the cell helpers shared by the
// header index and row readers.
//
// Spreadsheet cells arrive with the usual noise:
//   - Leading/trailing whitespace, including non-breaking spaces
//   - Excel formula wrappers (="value")
//   - Decomposed Unicode from copy/paste (e + combining accent)
//
// All ToPg* functions return values with Valid=false for empty/invalid input,
// which the SQL emitter renders as NULL.

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/unicode/norm"
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgFloat8 converts a float64 to pgtype.Float8.
// Returns invalid for NaN and infinities, which Postgres literals cannot carry.
func ToPgFloat8(f float64) pgtype.Float8 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// ToPgBool converts a bool to a valid pgtype.Bool.
func ToPgBool(b bool) pgtype.Bool {
	return pgtype.Bool{Bool: b, Valid: true}
}

// ToPgUUID converts a uuid.UUID to pgtype.UUID.
// Returns invalid for the nil UUID.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are normalised with headerKey; the first occurrence of a name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := headerKey(h)
		if key == "" {
			continue
		}
		if _, exists := idx[key]; exists {
			continue
		}
		idx[key] = i
	}
	return idx
}

// headerKey lowercases a column name and collapses inner whitespace so that
// "Customer  Site ID " and "customer site id" match.
func headerKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(CleanCell(name)), " "))
}

// Cell returns the cleaned value of the named column, or "" when the column
// is absent or the row is short.
func Cell(row []string, idx HeaderIndex, name string) string {
	pos, ok := idx[headerKey(name)]
	if !ok || pos >= len(row) {
		return ""
	}
	return CleanCell(row[pos])
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula wrapper (="...")
// - Removes the leading apostrophe Excel uses to force text
// - Normalises to Unicode NFC
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if len(s) >= 3 && strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = strings.TrimSpace(s[2 : len(s)-1])
	} else if strings.HasPrefix(s, "'") {
		s = strings.TrimSpace(s[1:])
	}

	return norm.NFC.String(s)
}

// RowFromCells picks the source columns out of a raw row.
func RowFromCells(row []string, idx HeaderIndex) InputRow {
	return InputRow{
		SiteIDs:      Cell(row, idx, ColSiteID),
		SiteNames:    Cell(row, idx, ColSiteName),
		Region:       Cell(row, idx, ColRegion),
		SOW:          Cell(row, idx, ColSOW),
		ActivityFlow: Cell(row, idx, ColActivityFlow),
	}
}

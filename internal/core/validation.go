package core

// validation.go checks the input header before any row is processed.
//
// Row-level validation does not exist: a blank cell is not an error, it is
// replaced by a fallback during canonicalisation. A missing column, however,
// means the sheet is not the expected export and the run must stop.

import (
	"fmt"
	"strings"
)

// ValidateHeaders validates that all required columns exist in the header.
// Returns the header index, or an error wrapping ErrMissingColumns that lists
// every missing column.
func ValidateHeaders(headers []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[headerKey(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return idx, nil
}

// MaxHeaderSearchRows is the maximum number of rows to scan for the header.
var MaxHeaderSearchRows = 20

// FindHeaderRow returns the index of the first record that holds every
// required column, looking at no more than MaxHeaderSearchRows records.
// Returns -1 when none does. Exported sheets often carry a title or a
// generated-at line above the real header.
func FindHeaderRow(records [][]string, specs []FieldSpec) int {
	maxRows := MaxHeaderSearchRows
	if len(records) < maxRows {
		maxRows = len(records)
	}

	for i := 0; i < maxRows; i++ {
		if hasRequiredColumns(records[i], specs) {
			return i
		}
	}
	return -1
}

func hasRequiredColumns(header []string, specs []FieldSpec) bool {
	idx := MakeHeaderIndex(header)
	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[headerKey(spec.Name)]; !ok {
			return false
		}
	}
	return true
}

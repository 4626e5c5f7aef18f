// Package excel reads tabular data out of Excel workbooks.
//
// It handles the artifacts real exports carry: preamble rows above the
// header, formula-prefixed cells, BOMs, and trailing empty rows. Data cells
// are returned verbatim - cleanup is applied only when matching headers, so
// the raw layer preserves exactly what the source contained.
package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/astomelio/data-engineer-challenge-2025/internal/schema"
)

// HeaderScanRows is how many leading rows are scanned for the header row.
// Exports sometimes place titles or filter descriptions above the data.
var HeaderScanRows = 10

// Read opens a workbook and returns all rows of its first sheet.
// Cell values are returned as displayed strings.
func Read(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	return rows, nil
}

// FindHeaderRow scans the first HeaderScanRows rows for one containing all
// required column names (case-insensitive, after cleanup). Returns the row
// index, or -1 if no row matches.
func FindHeaderRow(rows [][]string, required []string) int {
	limit := len(rows)
	if limit > HeaderScanRows {
		limit = HeaderScanRows
	}

	for i := 0; i < limit; i++ {
		idx := MakeHeaderIndex(rows[i])
		found := true
		for _, name := range required {
			if _, ok := idx[strings.ToLower(name)]; !ok {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

// MakeHeaderIndex creates a schema.HeaderIndex from a header row.
// Keys are cleaned and lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) schema.HeaderIndex {
	idx := make(schema.HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanHeader(h))] = i
	}
	return idx
}

// CleanHeader removes common export artifacts from a header cell:
// whitespace, a UTF-8 BOM, Excel formula prefixes (="..."), and
// surrounding quotes.
func CleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// IsEmptyRow reports whether every cell in the row is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Cell returns the value at the named column, or "" when the column is
// absent or the row is short. Data cells are not cleaned.
func Cell(row []string, idx schema.HeaderIndex, name string) string {
	pos, ok := idx[strings.ToLower(name)]
	if !ok || pos >= len(row) {
		return ""
	}
	return row[pos]
}

// Package schema defines the mapping from source workbook columns to their
// raw-layer target columns. The raw layer stores every cell verbatim; type
// coercion happens in the silver transform, which enumerates its rules per
// column.
package schema

// FieldSpec defines one source column of the loan workbook.
type FieldSpec struct {
	Name     string // Column header name in the workbook
	DBColumn string // Raw-layer column name
	Required bool   // Column must exist in the workbook header
}

// HeaderIndex maps cleaned, lowercased column names to their position in a
// source row.
type HeaderIndex map[string]int

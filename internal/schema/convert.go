package schema

// convert.go provides null-safe coercion from raw cell text to typed values.
//
// Source cells carry the messy reality of spreadsheet data: currency
// symbols, thousand separators, accounting-style negatives "(123.45)",
// free-text numerics ("10+ years"). Every coercer returns a database/sql
// Null* value with Valid=false for empty or unparseable input - coercion
// failures become NULLs, never errors.

import (
	"database/sql"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after
// cleanup. Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// digitRunRegex matches the first contiguous run of digits in free text.
var digitRunRegex = regexp.MustCompile(`\d+`)

// ToNullString trims a cell and returns an invalid value for blank input.
func ToNullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ToNullFloat converts a cell to a float, tolerating currency symbols,
// thousand separators, and accounting-style negatives.
func ToNullFloat(s string) sql.NullFloat64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullFloat64{}
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Remove common currency symbols and thousands separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "£", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return sql.NullFloat64{}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// ToNullInt converts a cell to an integer, rounding fractional input to the
// nearest whole number. Spreadsheet exports frequently render integer
// columns as "3.0".
func ToNullInt(s string) sql.NullInt64 {
	f := ToNullFloat(s)
	if !f.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(math.Round(f.Float64)), Valid: true}
}

// ExtractDigits pulls the first contiguous run of digits out of a free-text
// cell ("10+ years" -> 10, "< 1 year" -> 1). Returns invalid when the cell
// contains no digits.
func ExtractDigits(s string) sql.NullInt64 {
	match := digitRunRegex.FindString(s)
	if match == "" {
		return sql.NullInt64{}
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

package schema

// normalize.go canonicalizes the categorical columns of the loan data.
// The source system spells the same category several ways; each normalizer
// collapses the variants into one canonical label.

import "strings"

// Canonical term labels.
const (
	TermShort = "Short Term"
	TermLong  = "Long Term"
)

// DefaultPurpose is the label assigned when the source purpose is blank.
const DefaultPurpose = "Other"

// homeOwnership maps source spellings to canonical labels.
var homeOwnership = map[string]string{
	"home mortgage": "Mortgage",
	"havemortgage":  "Mortgage",
	"own home":      "Own",
	"rent":          "Rent",
}

// NormalizeTerm collapses the loan term to "Short Term" or "Long Term".
// Any value containing "short" (case-insensitive) is short; everything
// else, including blanks, is long.
func NormalizeTerm(s string) string {
	if strings.Contains(strings.ToLower(s), "short") {
		return TermShort
	}
	return TermLong
}

// NormalizePurpose trims the purpose, replaces underscores with spaces, and
// defaults blank values to "Other".
func NormalizePurpose(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPurpose
	}
	return strings.ReplaceAll(s, "_", " ")
}

// NormalizeHomeOwnership maps home ownership spellings to one of
// Mortgage, Own, Rent, or Other.
func NormalizeHomeOwnership(s string) string {
	if canon, ok := homeOwnership[strings.ToLower(strings.TrimSpace(s))]; ok {
		return canon
	}
	return "Other"
}

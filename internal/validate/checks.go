// Package validate runs declarative data-quality checks over the
// materialized layers after the transforms complete.
//
// Each check is a named predicate over an immutable snapshot of the raw,
// silver, and fact relations. Checks never repair data; they count
// violating rows and report. Any failing check fails the run, but nothing
// already written is rolled back.
package validate

import (
	"fmt"

	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

// Credit score bounds for the range check, applied to non-null scores only.
const (
	CreditScoreMin = 300
	CreditScoreMax = 850
)

// AcceptedLoanStatuses are the only valid silver loan_status values.
// NULL status is not counted as a violation; the non-null set check follows
// the accepted-values convention of ignoring NULLs.
var AcceptedLoanStatuses = map[string]bool{
	"Fully Paid":  true,
	"Charged Off": true,
}

// Snapshot holds the relations the checks run against. All three must come
// from the same pipeline run to be meaningful.
type Snapshot struct {
	Raw    []tables.RawLoan
	Silver []tables.CleanLoan
	Fact   []tables.FactLoan
}

// Check is one declarative assertion: a name, the table it inspects, and a
// function counting violating rows.
type Check struct {
	Name  string
	Table string
	Count func(s Snapshot) int
}

// Result reports the outcome of one check.
type Result struct {
	Name       string
	Table      string
	Violations int
}

// Passed reports whether the check found no violations.
func (r Result) Passed() bool { return r.Violations == 0 }

func (r Result) String() string {
	if r.Passed() {
		return fmt.Sprintf("PASS %s on %s", r.Name, r.Table)
	}
	return fmt.Sprintf("FAIL %s on %s: %d violating rows", r.Name, r.Table, r.Violations)
}

// Checks returns the full declared check list in evaluation order.
func Checks() []Check {
	return []Check{
		{Name: "not_null_loan_id", Table: "raw.raw_loans", Count: func(s Snapshot) int {
			return countBlank(s.Raw, func(r tables.RawLoan) string { return r.LoanID })
		}},
		{Name: "not_null_customer_id", Table: "raw.raw_loans", Count: func(s Snapshot) int {
			return countBlank(s.Raw, func(r tables.RawLoan) string { return r.CustomerID })
		}},
		{Name: "not_null_loan_id", Table: "silver.silver_loans", Count: func(s Snapshot) int {
			return countBlank(s.Silver, func(c tables.CleanLoan) string { return c.LoanID })
		}},
		{Name: "not_null_customer_id", Table: "silver.silver_loans", Count: func(s Snapshot) int {
			return countBlank(s.Silver, func(c tables.CleanLoan) string { return c.CustomerID })
		}},
		{Name: "unique_loan_id", Table: "silver.silver_loans", Count: func(s Snapshot) int {
			return countDuplicates(s.Silver, func(c tables.CleanLoan) string { return c.LoanID })
		}},
		{Name: "unique_loan_id", Table: "gold.fact_loan", Count: func(s Snapshot) int {
			return countDuplicates(s.Fact, func(f tables.FactLoan) string { return f.LoanID })
		}},
		{Name: "accepted_values_loan_status", Table: "silver.silver_loans", Count: func(s Snapshot) int {
			n := 0
			for _, c := range s.Silver {
				if c.LoanStatus.Valid && !AcceptedLoanStatuses[c.LoanStatus.String] {
					n++
				}
			}
			return n
		}},
		{Name: "credit_score_range", Table: "silver.silver_loans", Count: func(s Snapshot) int {
			n := 0
			for _, c := range s.Silver {
				if c.CreditScore.Valid && (c.CreditScore.Int64 < CreditScoreMin || c.CreditScore.Int64 > CreditScoreMax) {
					n++
				}
			}
			return n
		}},
		{Name: "non_empty", Table: "raw.raw_loans", Count: func(s Snapshot) int {
			return emptyViolation(len(s.Raw))
		}},
		{Name: "non_empty", Table: "silver.silver_loans", Count: func(s Snapshot) int {
			return emptyViolation(len(s.Silver))
		}},
		{Name: "non_empty", Table: "gold.fact_loan", Count: func(s Snapshot) int {
			return emptyViolation(len(s.Fact))
		}},
	}
}

// Run evaluates every declared check against the snapshot.
func Run(s Snapshot) []Result {
	checks := Checks()
	results := make([]Result, len(checks))
	for i, c := range checks {
		results[i] = Result{Name: c.Name, Table: c.Table, Violations: c.Count(s)}
	}
	return results
}

// Failures filters a result list down to the failed checks.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed() {
			failed = append(failed, r)
		}
	}
	return failed
}

func countBlank[T any](rows []T, field func(T) string) int {
	n := 0
	for _, row := range rows {
		if field(row) == "" {
			n++
		}
	}
	return n
}

// countDuplicates counts rows whose key already appeared, so a key seen
// k times contributes k-1 violations.
func countDuplicates[T any](rows []T, key func(T) string) int {
	seen := make(map[string]bool, len(rows))
	n := 0
	for _, row := range rows {
		k := key(row)
		if seen[k] {
			n++
		}
		seen[k] = true
	}
	return n
}

func emptyViolation(count int) int {
	if count == 0 {
		return 1
	}
	return 0
}

// Package transform derives the silver and gold layers from the raw layer.
//
// Every function here is a pure function over in-memory slices: table in,
// table out, no database access and no side effects. Persistence is the
// warehouse package's job. This keeps each rule independently testable and
// the full chain deterministic for a given raw snapshot.
package transform

import (
	"database/sql"
	"math"

	"github.com/astomelio/data-engineer-challenge-2025/internal/schema"
	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

// loanAmountSentinel is the upstream system's "not provided" placeholder
// for current_loan_amount.
const loanAmountSentinel = 99999999

// creditScoreScaleCap marks double-scaled credit scores. Source scores
// above 900 were entered with an extra trailing digit and are divided by 10.
const creditScoreScaleCap = 900

// Clean derives the silver layer from the raw layer: type coercion,
// sentinel removal, categorical canonicalization, credit-score rescaling,
// and deduplication by loan_id.
//
// Input must be ordered by ingestion sequence; when a loan_id appears more
// than once, the first ingested row wins. The output has exactly one row
// per distinct loan_id. Clean never fails: unparseable numeric cells
// become NULLs.
func Clean(raw []tables.RawLoan) []tables.CleanLoan {
	out := make([]tables.CleanLoan, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		if seen[r.LoanID] {
			continue
		}
		seen[r.LoanID] = true
		out = append(out, cleanRow(r))
	}

	return out
}

// cleanRow applies the column-by-column cleaning rules to one raw row.
func cleanRow(r tables.RawLoan) tables.CleanLoan {
	c := tables.CleanLoan{
		LoanID:                    r.LoanID,
		CustomerID:                r.CustomerID,
		LoanStatus:                schema.ToNullString(r.LoanStatus),
		CurrentLoanAmount:         removeSentinel(schema.ToNullFloat(r.CurrentLoanAmount)),
		Term:                      schema.NormalizeTerm(r.Term),
		CreditScore:               rescaleCreditScore(schema.ToNullFloat(r.CreditScore)),
		AnnualIncome:              schema.ToNullFloat(r.AnnualIncome),
		JobTenureYears:            schema.ExtractDigits(r.YearsInCurrentJob),
		HomeOwnership:             schema.NormalizeHomeOwnership(r.HomeOwnership),
		PurposeName:               schema.NormalizePurpose(r.Purpose),
		MonthlyDebt:               schema.ToNullFloat(r.MonthlyDebt),
		YearsCreditHistory:        schema.ToNullFloat(r.YearsOfCreditHistory),
		MonthsSinceLastDelinquent: schema.ToNullInt(r.MonthsSinceLastDelinquent),
		NOpenAccounts:             schema.ToNullInt(r.NumberOfOpenAccounts),
		NCreditProblems:           schema.ToNullInt(r.NumberOfCreditProblems),
		CurrentCreditBalance:      schema.ToNullFloat(r.CurrentCreditBalance),
		MaxOpenCredit:             schema.ToNullFloat(r.MaximumOpenCredit),
		Bankruptcies:              zeroWhenNull(schema.ToNullInt(r.Bankruptcies)),
		TaxLiens:                  zeroWhenNull(schema.ToNullInt(r.TaxLiens)),
	}
	return c
}

// removeSentinel nulls out the loan-amount placeholder value.
func removeSentinel(v sql.NullFloat64) sql.NullFloat64 {
	if v.Valid && v.Float64 == loanAmountSentinel {
		return sql.NullFloat64{}
	}
	return v
}

// rescaleCreditScore fixes the known double-scale data entry error: scores
// above 900 carry an extra digit and are divided by 10. The result is
// rounded to the nearest integer. NULL stays NULL.
func rescaleCreditScore(v sql.NullFloat64) sql.NullInt64 {
	if !v.Valid {
		return sql.NullInt64{}
	}
	score := v.Float64
	if score > creditScoreScaleCap {
		score = score / 10
	}
	return sql.NullInt64{Int64: int64(math.Round(score)), Valid: true}
}

// zeroWhenNull defaults a nullable count to 0.
func zeroWhenNull(v sql.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

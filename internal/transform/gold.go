package transform

// gold.go derives the star schema from the silver layer: one fact table and
// two dimensions. All three are rebuilt from scratch on every run; surrogate
// keys are not stable across runs when the distinct value sets change.

import (
	"database/sql"
	"sort"

	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

// BuildDimPurpose extracts the distinct purpose names from the silver layer
// and assigns surrogate keys by dense rank over ascending lexicographic
// order. Ties are impossible since the values are distinct.
func BuildDimPurpose(clean []tables.CleanLoan) []tables.DimPurpose {
	distinct := make(map[string]bool, len(clean))
	for _, c := range clean {
		distinct[c.PurposeName] = true
	}

	names := make([]string, 0, len(distinct))
	for name := range distinct {
		names = append(names, name)
	}
	sort.Strings(names)

	dim := make([]tables.DimPurpose, len(names))
	for i, name := range names {
		dim[i] = tables.DimPurpose{PurposeID: int64(i + 1), PurposeName: name}
	}
	return dim
}

// BuildDimCustomer extracts one row per distinct (customer_id,
// job_tenure_years, home_ownership) combination. A customer whose loans
// disagree on attributes produces multiple rows. Output is sorted for
// deterministic table content across runs.
func BuildDimCustomer(clean []tables.CleanLoan) []tables.DimCustomer {
	type key struct {
		customerID string
		tenure     sql.NullInt64
		ownership  string
	}

	seen := make(map[key]bool, len(clean))
	dim := make([]tables.DimCustomer, 0, len(clean))
	for _, c := range clean {
		k := key{customerID: c.CustomerID, tenure: c.JobTenureYears, ownership: c.HomeOwnership}
		if seen[k] {
			continue
		}
		seen[k] = true
		dim = append(dim, tables.DimCustomer{
			CustomerID:     c.CustomerID,
			JobTenureYears: c.JobTenureYears,
			HomeOwnership:  c.HomeOwnership,
		})
	}

	sort.Slice(dim, func(i, j int) bool {
		if dim[i].CustomerID != dim[j].CustomerID {
			return dim[i].CustomerID < dim[j].CustomerID
		}
		ti, tj := dim[i].JobTenureYears, dim[j].JobTenureYears
		if ti.Valid != tj.Valid {
			return !ti.Valid // NULL tenure sorts first
		}
		if ti.Valid && ti.Int64 != tj.Int64 {
			return ti.Int64 < tj.Int64
		}
		return dim[i].HomeOwnership < dim[j].HomeOwnership
	})

	return dim
}

// BuildFactLoan produces one fact row per clean loan, attaching purpose_id
// via a left join on the normalized purpose name. A purpose missing from
// the dimension leaves purpose_id NULL; rows are never dropped or
// duplicated, so the fact row count always equals the silver row count.
func BuildFactLoan(clean []tables.CleanLoan, purposes []tables.DimPurpose) []tables.FactLoan {
	purposeID := make(map[string]int64, len(purposes))
	for _, p := range purposes {
		purposeID[p.PurposeName] = p.PurposeID
	}

	facts := make([]tables.FactLoan, len(clean))
	for i, c := range clean {
		var pid sql.NullInt64
		if id, ok := purposeID[c.PurposeName]; ok {
			pid = sql.NullInt64{Int64: id, Valid: true}
		}
		facts[i] = tables.FactLoan{
			LoanID:                    c.LoanID,
			CustomerID:                c.CustomerID,
			PurposeID:                 pid,
			LoanStatus:                c.LoanStatus,
			CurrentLoanAmount:         c.CurrentLoanAmount,
			CreditScore:               c.CreditScore,
			AnnualIncome:              c.AnnualIncome,
			MonthlyDebt:               c.MonthlyDebt,
			YearsCreditHistory:        c.YearsCreditHistory,
			MonthsSinceLastDelinquent: c.MonthsSinceLastDelinquent,
			NOpenAccounts:             c.NOpenAccounts,
			NCreditProblems:           c.NCreditProblems,
			CurrentCreditBalance:      c.CurrentCreditBalance,
			MaxOpenCredit:             c.MaxOpenCredit,
			Bankruptcies:              c.Bankruptcies,
			TaxLiens:                  c.TaxLiens,
		}
	}
	return facts
}

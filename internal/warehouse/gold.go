package warehouse

// gold.go persists and reads the gold star schema: fact_loan plus the
// customer and purpose dimensions. All three are dropped and rebuilt
// together so they always derive from the same silver snapshot.

import (
	"context"
	"fmt"

	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

const (
	factQualified        = "gold.fact_loan"
	dimCustomerQualified = "gold.dim_customer"
	dimPurposeQualified  = "gold.dim_purpose"
)

var factColumns = []string{
	"loan_id", "customer_id", "purpose_id", "loan_status",
	"current_loan_amount", "credit_score", "annual_income", "monthly_debt",
	"years_credit_history", "months_since_last_delinquent", "n_open_accounts",
	"n_credit_problems", "current_credit_balance", "max_open_credit",
	"bankruptcies", "tax_liens",
}

const factDDL = `CREATE TABLE ` + factQualified + ` (
	loan_id VARCHAR NOT NULL,
	customer_id VARCHAR,
	purpose_id BIGINT,
	loan_status VARCHAR,
	current_loan_amount DOUBLE,
	credit_score BIGINT,
	annual_income DOUBLE,
	monthly_debt DOUBLE,
	years_credit_history DOUBLE,
	months_since_last_delinquent BIGINT,
	n_open_accounts BIGINT,
	n_credit_problems BIGINT,
	current_credit_balance DOUBLE,
	max_open_credit DOUBLE,
	bankruptcies BIGINT,
	tax_liens BIGINT
)`

const dimCustomerDDL = `CREATE TABLE ` + dimCustomerQualified + ` (
	customer_id VARCHAR NOT NULL,
	job_tenure_years BIGINT,
	home_ownership VARCHAR
)`

const dimPurposeDDL = `CREATE TABLE ` + dimPurposeQualified + ` (
	purpose_id BIGINT NOT NULL,
	purpose_name VARCHAR NOT NULL
)`

// WriteGold drops and rebuilds the three gold tables in one pass.
func (s *Store) WriteGold(ctx context.Context, facts []tables.FactLoan, customers []tables.DimCustomer, purposes []tables.DimPurpose) error {
	for _, stmt := range []struct {
		drop, create string
	}{
		{"DROP TABLE IF EXISTS " + factQualified, factDDL},
		{"DROP TABLE IF EXISTS " + dimCustomerQualified, dimCustomerDDL},
		{"DROP TABLE IF EXISTS " + dimPurposeQualified, dimPurposeDDL},
	} {
		if _, err := s.db.ExecContext(ctx, stmt.drop); err != nil {
			return fmt.Errorf("dropping gold table: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, stmt.create); err != nil {
			return fmt.Errorf("creating gold table: %w", err)
		}
	}

	if err := s.insertRows(ctx, factQualified, factColumns, len(facts), func(i int) []any {
		f := facts[i]
		return []any{
			f.LoanID, f.CustomerID, f.PurposeID, f.LoanStatus,
			f.CurrentLoanAmount, f.CreditScore, f.AnnualIncome, f.MonthlyDebt,
			f.YearsCreditHistory, f.MonthsSinceLastDelinquent, f.NOpenAccounts,
			f.NCreditProblems, f.CurrentCreditBalance, f.MaxOpenCredit,
			f.Bankruptcies, f.TaxLiens,
		}
	}); err != nil {
		return err
	}

	if err := s.insertRows(ctx, dimCustomerQualified,
		[]string{"customer_id", "job_tenure_years", "home_ownership"},
		len(customers), func(i int) []any {
			c := customers[i]
			return []any{c.CustomerID, c.JobTenureYears, c.HomeOwnership}
		}); err != nil {
		return err
	}

	return s.insertRows(ctx, dimPurposeQualified,
		[]string{"purpose_id", "purpose_name"},
		len(purposes), func(i int) []any {
			p := purposes[i]
			return []any{p.PurposeID, p.PurposeName}
		})
}

// FetchFact reads the full fact table, or nil when it does not exist.
func (s *Store) FetchFact(ctx context.Context) ([]tables.FactLoan, error) {
	exists, err := s.tableExists(ctx, "gold", "fact_loan")
	if err != nil || !exists {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+joinColumns(factColumns)+" FROM "+factQualified+" ORDER BY loan_id")
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", factQualified, err)
	}
	defer rows.Close()

	var out []tables.FactLoan
	for rows.Next() {
		var f tables.FactLoan
		if err := rows.Scan(
			&f.LoanID, &f.CustomerID, &f.PurposeID, &f.LoanStatus,
			&f.CurrentLoanAmount, &f.CreditScore, &f.AnnualIncome, &f.MonthlyDebt,
			&f.YearsCreditHistory, &f.MonthsSinceLastDelinquent, &f.NOpenAccounts,
			&f.NCreditProblems, &f.CurrentCreditBalance, &f.MaxOpenCredit,
			&f.Bankruptcies, &f.TaxLiens,
		); err != nil {
			return nil, fmt.Errorf("scanning fact row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FactCount returns the fact table's row count, or 0 when absent.
func (s *Store) FactCount(ctx context.Context) (int64, error) {
	exists, err := s.tableExists(ctx, "gold", "fact_loan")
	if err != nil || !exists {
		return 0, err
	}
	return s.count(ctx, factQualified)
}

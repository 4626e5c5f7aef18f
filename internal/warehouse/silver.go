package warehouse

// silver.go persists and reads the silver layer. The table is dropped and
// rebuilt on every transform run; it has no identity across runs.

import (
	"context"
	"fmt"

	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

const silverQualified = "silver.silver_loans"

var silverColumns = []string{
	"loan_id", "customer_id", "loan_status", "current_loan_amount", "term",
	"credit_score", "annual_income", "job_tenure_years", "home_ownership",
	"purpose_name", "monthly_debt", "years_credit_history",
	"months_since_last_delinquent", "n_open_accounts", "n_credit_problems",
	"current_credit_balance", "max_open_credit", "bankruptcies", "tax_liens",
}

const silverDDL = `CREATE TABLE ` + silverQualified + ` (
	loan_id VARCHAR NOT NULL,
	customer_id VARCHAR,
	loan_status VARCHAR,
	current_loan_amount DOUBLE,
	term VARCHAR,
	credit_score BIGINT,
	annual_income DOUBLE,
	job_tenure_years BIGINT,
	home_ownership VARCHAR,
	purpose_name VARCHAR,
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

// WriteSilver drops and rebuilds the silver table from the cleaned rows.
func (s *Store) WriteSilver(ctx context.Context, rows []tables.CleanLoan) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+silverQualified); err != nil {
		return fmt.Errorf("dropping %s: %w", silverQualified, err)
	}
	if _, err := s.db.ExecContext(ctx, silverDDL); err != nil {
		return fmt.Errorf("creating %s: %w", silverQualified, err)
	}
	return s.insertRows(ctx, silverQualified, silverColumns, len(rows), func(i int) []any {
		c := rows[i]
		return []any{
			c.LoanID, c.CustomerID, c.LoanStatus, c.CurrentLoanAmount, c.Term,
			c.CreditScore, c.AnnualIncome, c.JobTenureYears, c.HomeOwnership,
			c.PurposeName, c.MonthlyDebt, c.YearsCreditHistory,
			c.MonthsSinceLastDelinquent, c.NOpenAccounts, c.NCreditProblems,
			c.CurrentCreditBalance, c.MaxOpenCredit, c.Bankruptcies, c.TaxLiens,
		}
	})
}

// FetchSilver reads the full silver table, or nil when it does not exist.
func (s *Store) FetchSilver(ctx context.Context) ([]tables.CleanLoan, error) {
	exists, err := s.tableExists(ctx, "silver", "silver_loans")
	if err != nil || !exists {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+joinColumns(silverColumns)+" FROM "+silverQualified+" ORDER BY loan_id")
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", silverQualified, err)
	}
	defer rows.Close()

	var out []tables.CleanLoan
	for rows.Next() {
		var c tables.CleanLoan
		if err := rows.Scan(
			&c.LoanID, &c.CustomerID, &c.LoanStatus, &c.CurrentLoanAmount, &c.Term,
			&c.CreditScore, &c.AnnualIncome, &c.JobTenureYears, &c.HomeOwnership,
			&c.PurposeName, &c.MonthlyDebt, &c.YearsCreditHistory,
			&c.MonthsSinceLastDelinquent, &c.NOpenAccounts, &c.NCreditProblems,
			&c.CurrentCreditBalance, &c.MaxOpenCredit, &c.Bankruptcies, &c.TaxLiens,
		); err != nil {
			return nil, fmt.Errorf("scanning silver row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SilverCount returns the silver table's row count, or 0 when absent.
func (s *Store) SilverCount(ctx context.Context) (int64, error) {
	exists, err := s.tableExists(ctx, "silver", "silver_loans")
	if err != nil || !exists {
		return 0, err
	}
	return s.count(ctx, silverQualified)
}

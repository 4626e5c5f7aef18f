package warehouse

// raw.go persists and reads the raw layer. Raw rows keep every source cell
// as text so the layer stays a faithful copy of the workbook; typing
// happens in the silver transform.

import (
	"context"
	"fmt"

	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

const (
	rawSchema    = "raw"
	rawTable     = "raw_loans"
	rawQualified = rawSchema + "." + rawTable
)

var rawColumns = []string{
	"loan_id", "customer_id", "loan_status", "current_loan_amount", "term",
	"credit_score", "annual_income", "years_in_current_job", "home_ownership",
	"purpose", "monthly_debt", "years_of_credit_history",
	"months_since_last_delinquent", "number_of_open_accounts",
	"number_of_credit_problems", "current_credit_balance",
	"maximum_open_credit", "bankruptcies", "tax_liens",
	"_source_file", "_ingestion_timestamp", "_row_seq",
}

const rawDDL = `CREATE TABLE ` + rawQualified + ` (
	loan_id VARCHAR,
	customer_id VARCHAR,
	loan_status VARCHAR,
	current_loan_amount VARCHAR,
	term VARCHAR,
	credit_score VARCHAR,
	annual_income VARCHAR,
	years_in_current_job VARCHAR,
	home_ownership VARCHAR,
	purpose VARCHAR,
	monthly_debt VARCHAR,
	years_of_credit_history VARCHAR,
	months_since_last_delinquent VARCHAR,
	number_of_open_accounts VARCHAR,
	number_of_credit_problems VARCHAR,
	current_credit_balance VARCHAR,
	maximum_open_credit VARCHAR,
	bankruptcies VARCHAR,
	tax_liens VARCHAR,
	_source_file VARCHAR,
	_ingestion_timestamp TIMESTAMP,
	_row_seq BIGINT
)`

func rawArgs(r tables.RawLoan) []any {
	return []any{
		r.LoanID, r.CustomerID, r.LoanStatus, r.CurrentLoanAmount, r.Term,
		r.CreditScore, r.AnnualIncome, r.YearsInCurrentJob, r.HomeOwnership,
		r.Purpose, r.MonthlyDebt, r.YearsOfCreditHistory,
		r.MonthsSinceLastDelinquent, r.NumberOfOpenAccounts,
		r.NumberOfCreditProblems, r.CurrentCreditBalance,
		r.MaximumOpenCredit, r.Bankruptcies, r.TaxLiens,
		r.SourceFile, r.IngestionTimestamp, r.RowSeq,
	}
}

// ReplaceRaw drops and recreates the raw table from the given rows
// (full-refresh mode).
func (s *Store) ReplaceRaw(ctx context.Context, rows []tables.RawLoan) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+rawQualified); err != nil {
		return fmt.Errorf("dropping %s: %w", rawQualified, err)
	}
	if _, err := s.db.ExecContext(ctx, rawDDL); err != nil {
		return fmt.Errorf("creating %s: %w", rawQualified, err)
	}
	return s.insertRows(ctx, rawQualified, rawColumns, len(rows), func(i int) []any {
		return rawArgs(rows[i])
	})
}

// AppendRaw appends rows to the raw table, creating it first if absent
// (incremental mode).
func (s *Store) AppendRaw(ctx context.Context, rows []tables.RawLoan) error {
	exists, err := s.tableExists(ctx, rawSchema, rawTable)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := s.db.ExecContext(ctx, rawDDL); err != nil {
			return fmt.Errorf("creating %s: %w", rawQualified, err)
		}
	}
	return s.insertRows(ctx, rawQualified, rawColumns, len(rows), func(i int) []any {
		return rawArgs(rows[i])
	})
}

// NextRowSeq returns the row sequence the next ingested row should carry:
// one past the current maximum, or 1 for a missing or empty table.
func (s *Store) NextRowSeq(ctx context.Context) (int64, error) {
	exists, err := s.tableExists(ctx, rawSchema, rawTable)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 1, nil
	}

	var max int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(_row_seq), 0) FROM "+rawQualified).Scan(&max); err != nil {
		return 0, fmt.Errorf("reading max row seq: %w", err)
	}
	return max + 1, nil
}

// FetchRaw reads the full raw table ordered by ingestion sequence, which
// is the order the silver dedup depends on.
func (s *Store) FetchRaw(ctx context.Context) ([]tables.RawLoan, error) {
	exists, err := s.tableExists(ctx, rawSchema, rawTable)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+joinColumns(rawColumns)+" FROM "+rawQualified+" ORDER BY _row_seq")
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawQualified, err)
	}
	defer rows.Close()

	var out []tables.RawLoan
	for rows.Next() {
		var r tables.RawLoan
		if err := rows.Scan(
			&r.LoanID, &r.CustomerID, &r.LoanStatus, &r.CurrentLoanAmount, &r.Term,
			&r.CreditScore, &r.AnnualIncome, &r.YearsInCurrentJob, &r.HomeOwnership,
			&r.Purpose, &r.MonthlyDebt, &r.YearsOfCreditHistory,
			&r.MonthsSinceLastDelinquent, &r.NumberOfOpenAccounts,
			&r.NumberOfCreditProblems, &r.CurrentCreditBalance,
			&r.MaximumOpenCredit, &r.Bankruptcies, &r.TaxLiens,
			&r.SourceFile, &r.IngestionTimestamp, &r.RowSeq,
		); err != nil {
			return nil, fmt.Errorf("scanning raw row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RawCount returns the raw table's row count, or 0 when the table is
// absent.
func (s *Store) RawCount(ctx context.Context) (int64, error) {
	exists, err := s.tableExists(ctx, rawSchema, rawTable)
	if err != nil || !exists {
		return 0, err
	}
	return s.count(ctx, rawQualified)
}

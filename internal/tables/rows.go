// Package tables defines the row types for every persisted layer of the
// pipeline: raw (verbatim source rows), silver (cleaned and deduplicated
// loans), and gold (star-schema fact and dimensions).
//
// These are plain structs so the transforms can operate on in-memory slices
// without touching the database. The parquet tags on RawLoan drive the
// archival snapshot written for every ingested batch.
package tables

import (
	"database/sql"
	"time"
)

// RawLoan is one row of the source workbook, preserved verbatim.
// All source cells stay strings; blank cells stay empty strings.
// No uniqueness is enforced at this layer - duplicates and malformed
// values are expected and kept for audit.
type RawLoan struct {
	LoanID                    string `parquet:"loan_id"`
	CustomerID                string `parquet:"customer_id"`
	LoanStatus                string `parquet:"loan_status"`
	CurrentLoanAmount         string `parquet:"current_loan_amount"`
	Term                      string `parquet:"term"`
	CreditScore               string `parquet:"credit_score"`
	AnnualIncome              string `parquet:"annual_income"`
	YearsInCurrentJob         string `parquet:"years_in_current_job"`
	HomeOwnership             string `parquet:"home_ownership"`
	Purpose                   string `parquet:"purpose"`
	MonthlyDebt               string `parquet:"monthly_debt"`
	YearsOfCreditHistory      string `parquet:"years_of_credit_history"`
	MonthsSinceLastDelinquent string `parquet:"months_since_last_delinquent"`
	NumberOfOpenAccounts      string `parquet:"number_of_open_accounts"`
	NumberOfCreditProblems    string `parquet:"number_of_credit_problems"`
	CurrentCreditBalance      string `parquet:"current_credit_balance"`
	MaximumOpenCredit         string `parquet:"maximum_open_credit"`
	Bankruptcies              string `parquet:"bankruptcies"`
	TaxLiens                  string `parquet:"tax_liens"`

	// Ingestion provenance
	SourceFile         string    `parquet:"_source_file"`
	IngestionTimestamp time.Time `parquet:"_ingestion_timestamp,timestamp(millisecond)"`

	// RowSeq is a monotonically increasing sequence assigned at ingestion.
	// It makes the silver dedup tie-break ("first ingested wins")
	// deterministic regardless of storage scan order.
	RowSeq int64 `parquet:"_row_seq"`
}

// TableName returns the qualified raw table name.
func (RawLoan) TableName() string { return "raw.raw_loans" }

// CleanLoan is one deduplicated, type-coerced loan record.
// Invariants: LoanID is unique; CreditScore is null or the rescaled source
// value; Term is "Short Term" or "Long Term"; Bankruptcies and TaxLiens
// are never null; PurposeName is never blank.
type CleanLoan struct {
	LoanID                    string
	CustomerID                string
	LoanStatus                sql.NullString
	CurrentLoanAmount         sql.NullFloat64
	Term                      string
	CreditScore               sql.NullInt64
	AnnualIncome              sql.NullFloat64
	JobTenureYears            sql.NullInt64
	HomeOwnership             string
	PurposeName               string
	MonthlyDebt               sql.NullFloat64
	YearsCreditHistory        sql.NullFloat64
	MonthsSinceLastDelinquent sql.NullInt64
	NOpenAccounts             sql.NullInt64
	NCreditProblems           sql.NullInt64
	CurrentCreditBalance      sql.NullFloat64
	MaxOpenCredit             sql.NullFloat64
	Bankruptcies              int64
	TaxLiens                  int64
}

// TableName returns the qualified silver table name.
func (CleanLoan) TableName() string { return "silver.silver_loans" }

// FactLoan is one fact row per clean loan, carrying measures and
// foreign keys into the dimensions. PurposeID is null only on a
// left-join miss, which indicates the dimensions were built from a
// different silver snapshot.
type FactLoan struct {
	LoanID                    string
	CustomerID                string
	PurposeID                 sql.NullInt64
	LoanStatus                sql.NullString
	CurrentLoanAmount         sql.NullFloat64
	CreditScore               sql.NullInt64
	AnnualIncome              sql.NullFloat64
	MonthlyDebt               sql.NullFloat64
	YearsCreditHistory        sql.NullFloat64
	MonthsSinceLastDelinquent sql.NullInt64
	NOpenAccounts             sql.NullInt64
	NCreditProblems           sql.NullInt64
	CurrentCreditBalance      sql.NullFloat64
	MaxOpenCredit             sql.NullFloat64
	Bankruptcies              int64
	TaxLiens                  int64
}

// TableName returns the qualified fact table name.
func (FactLoan) TableName() string { return "gold.fact_loan" }

// DimCustomer is one row per distinct (customer_id, job_tenure_years,
// home_ownership) combination seen in the silver layer. A customer whose
// loans disagree on attributes yields multiple rows; that inherited gap is
// documented rather than resolved here.
type DimCustomer struct {
	CustomerID     string
	JobTenureYears sql.NullInt64
	HomeOwnership  string
}

// TableName returns the qualified customer dimension name.
func (DimCustomer) TableName() string { return "gold.dim_customer" }

// DimPurpose is one row per distinct normalized purpose name. PurposeID is
// a dense rank over the lexicographically sorted distinct set, recomputed
// on every run; it is not stable when the set of purposes changes.
type DimPurpose struct {
	PurposeID   int64
	PurposeName string
}

// TableName returns the qualified purpose dimension name.
func (DimPurpose) TableName() string { return "gold.dim_purpose" }

package schema

// LoanFieldSpecs defines the expected workbook columns for the loan source
// file, in raw-table column order. The two identifier columns are required
// for header detection; everything else is loaded verbatim when present and
// left blank when the column is missing.
var LoanFieldSpecs = []FieldSpec{
	{Name: "Loan ID", DBColumn: "loan_id", Required: true},
	{Name: "Customer ID", DBColumn: "customer_id", Required: true},
	{Name: "Loan Status", DBColumn: "loan_status"},
	{Name: "Current Loan Amount", DBColumn: "current_loan_amount"},
	{Name: "Term", DBColumn: "term"},
	{Name: "Credit Score", DBColumn: "credit_score"},
	{Name: "Annual Income", DBColumn: "annual_income"},
	{Name: "Years in current job", DBColumn: "years_in_current_job"},
	{Name: "Home Ownership", DBColumn: "home_ownership"},
	{Name: "Purpose", DBColumn: "purpose"},
	{Name: "Monthly Debt", DBColumn: "monthly_debt"},
	{Name: "Years of Credit History", DBColumn: "years_of_credit_history"},
	{Name: "Months since last delinquent", DBColumn: "months_since_last_delinquent"},
	{Name: "Number of Open Accounts", DBColumn: "number_of_open_accounts"},
	{Name: "Number of Credit Problems", DBColumn: "number_of_credit_problems"},
	{Name: "Current Credit Balance", DBColumn: "current_credit_balance"},
	{Name: "Maximum Open Credit", DBColumn: "maximum_open_credit"},
	{Name: "Bankruptcies", DBColumn: "bankruptcies"},
	{Name: "Tax Liens", DBColumn: "tax_liens"},
}

// RequiredHeaders returns the workbook header names that must be present
// for a sheet to be recognized as loan data.
func RequiredHeaders() []string {
	var req []string
	for _, spec := range LoanFieldSpecs {
		if spec.Required {
			req = append(req, spec.Name)
		}
	}
	return req
}

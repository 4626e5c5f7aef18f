package transform

import (
	"database/sql"
	"testing"

	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

func cleanLoan(loanID, customerID, purpose string) tables.CleanLoan {
	return tables.CleanLoan{LoanID: loanID, CustomerID: customerID, PurposeName: purpose}
}

func TestBuildDimPurpose_DenseRankLexicographic(t *testing.T) {
	clean := []tables.CleanLoan{
		cleanLoan("L1", "C1", "Home Improvements"),
		cleanLoan("L2", "C2", "Debt Consolidation"),
		cleanLoan("L3", "C3", "Home Improvements"),
		cleanLoan("L4", "C4", "Other"),
	}

	dim := BuildDimPurpose(clean)

	want := []tables.DimPurpose{
		{PurposeID: 1, PurposeName: "Debt Consolidation"},
		{PurposeID: 2, PurposeName: "Home Improvements"},
		{PurposeID: 3, PurposeName: "Other"},
	}

	if len(dim) != len(want) {
		t.Fatalf("BuildDimPurpose() returned %d rows, want %d", len(dim), len(want))
	}
	for i := range want {
		if dim[i] != want[i] {
			t.Errorf("dim[%d] = %+v, want %+v", i, dim[i], want[i])
		}
	}
}

func TestBuildDimCustomer_DistinctTriples(t *testing.T) {
	tenure5 := sql.NullInt64{Int64: 5, Valid: true}
	clean := []tables.CleanLoan{
		{LoanID: "L1", CustomerID: "C1", JobTenureYears: tenure5, HomeOwnership: "Rent"},
		{LoanID: "L2", CustomerID: "C1", JobTenureYears: tenure5, HomeOwnership: "Rent"},
		// Same customer, conflicting attributes: produces a second row.
		{LoanID: "L3", CustomerID: "C1", JobTenureYears: tenure5, HomeOwnership: "Own"},
		{LoanID: "L4", CustomerID: "C2", HomeOwnership: "Other"},
	}

	dim := BuildDimCustomer(clean)

	if len(dim) != 3 {
		t.Fatalf("BuildDimCustomer() returned %d rows, want 3", len(dim))
	}

	// Sorted by customer_id, then tenure, then ownership.
	if dim[0].CustomerID != "C1" || dim[0].HomeOwnership != "Own" {
		t.Errorf("dim[0] = %+v, want C1/Own", dim[0])
	}
	if dim[1].CustomerID != "C1" || dim[1].HomeOwnership != "Rent" {
		t.Errorf("dim[1] = %+v, want C1/Rent", dim[1])
	}
	if dim[2].CustomerID != "C2" {
		t.Errorf("dim[2] = %+v, want C2", dim[2])
	}
}

func TestBuildFactLoan_CardinalityAndJoin(t *testing.T) {
	clean := []tables.CleanLoan{
		cleanLoan("L1", "C1", "Debt Consolidation"),
		cleanLoan("L2", "C2", "Other"),
		cleanLoan("L3", "C3", "Debt Consolidation"),
	}
	purposes := BuildDimPurpose(clean)

	facts := BuildFactLoan(clean, purposes)

	if len(facts) != len(clean) {
		t.Fatalf("BuildFactLoan() returned %d rows, want %d (left join must not drop or duplicate)", len(facts), len(clean))
	}

	if !facts[0].PurposeID.Valid || facts[0].PurposeID.Int64 != 1 {
		t.Errorf("L1 purpose_id = %+v, want 1", facts[0].PurposeID)
	}
	if !facts[1].PurposeID.Valid || facts[1].PurposeID.Int64 != 2 {
		t.Errorf("L2 purpose_id = %+v, want 2", facts[1].PurposeID)
	}
	if facts[2].PurposeID != facts[0].PurposeID {
		t.Errorf("same purpose resolved to different ids: %+v vs %+v", facts[2].PurposeID, facts[0].PurposeID)
	}
}

func TestBuildFactLoan_JoinMissLeavesNullPurpose(t *testing.T) {
	clean := []tables.CleanLoan{cleanLoan("L1", "C1", "Debt Consolidation")}
	// Dimension built from a different snapshot that lacks this purpose.
	stale := []tables.DimPurpose{{PurposeID: 1, PurposeName: "Other"}}

	facts := BuildFactLoan(clean, stale)

	if len(facts) != 1 {
		t.Fatalf("BuildFactLoan() returned %d rows, want 1", len(facts))
	}
	if facts[0].PurposeID.Valid {
		t.Errorf("purpose_id = %+v, want NULL on join miss", facts[0].PurposeID)
	}
}

func TestBuildDimPurpose_CountMatchesDistinctPurposes(t *testing.T) {
	raw := []tables.RawLoan{
		{LoanID: "L1", Purpose: "car_repair", RowSeq: 1},
		{LoanID: "L2", Purpose: " car_repair ", RowSeq: 2},
		{LoanID: "L3", Purpose: "", RowSeq: 3},
		{LoanID: "L4", Purpose: "vacation", RowSeq: 4},
	}

	clean := Clean(raw)
	dim := BuildDimPurpose(clean)

	// car repair, Other, vacation
	if len(dim) != 3 {
		t.Errorf("BuildDimPurpose() returned %d rows, want 3 distinct normalized purposes", len(dim))
	}
}

package schema

import "testing"

func TestLoanFieldSpecs(t *testing.T) {
	if got := len(LoanFieldSpecs); got != 19 {
		t.Fatalf("len(LoanFieldSpecs) = %d, want 19", got)
	}

	seen := make(map[string]bool, len(LoanFieldSpecs))
	for _, spec := range LoanFieldSpecs {
		if spec.Name == "" || spec.DBColumn == "" {
			t.Errorf("incomplete field spec: %+v", spec)
		}
		if seen[spec.DBColumn] {
			t.Errorf("duplicate db column %q", spec.DBColumn)
		}
		seen[spec.DBColumn] = true
	}
}

func TestRequiredHeaders(t *testing.T) {
	got := RequiredHeaders()
	want := []string{"Loan ID", "Customer ID"}
	if len(got) != len(want) {
		t.Fatalf("RequiredHeaders() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RequiredHeaders()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
